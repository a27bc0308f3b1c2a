package store

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"billed/internal/app/service"
	"billed/internal/common"
	"billed/internal/domain/model"
	"billed/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocal_CreateUpdateList(t *testing.T) {
	ctx := context.Background()
	svc := service.NewBillService(repository.NewMemoryStore().Bills(), "http://billed.test", zap.NewNop())
	st := NewLocal(svc, model.Session{Type: model.UserTypeEmployee, Email: "e@e"})

	created, err := st.Bills().Create(ctx, CreateRequest{
		File: model.FileAttachment{Name: "image.png", ContentType: "image/png", Data: []byte("img")},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.Key)

	bill, err := st.Bills().Update(ctx, UpdateRequest{Selector: created.Key, Bill: model.Bill{
		Type: "Transports", Name: "Avion", Date: "2024-04-24", Amount: 26, VAT: 56, Pct: 4,
	}})
	require.NoError(t, err)
	assert.Equal(t, created.FileURL, bill.FileURL)

	bills, err := st.Bills().List(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, created.Key, bills[0].ID)
}

func TestLocal_ErrorsAreStoreErrors(t *testing.T) {
	ctx := context.Background()
	svc := service.NewBillService(repository.NewMemoryStore().Bills(), "http://billed.test", zap.NewNop())
	st := NewLocal(svc, model.Session{Type: model.UserTypeEmployee, Email: "e@e"})

	_, err := st.Bills().Update(ctx, UpdateRequest{Selector: "missing"})
	var storeErr *common.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, http.StatusNotFound, storeErr.Status)
	assert.EqualError(t, err, "Erreur 404")

	_, err = st.Bills().Create(ctx, CreateRequest{Email: "someone@else"})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = st.Bills().Create(ctx, CreateRequest{File: model.FileAttachment{Name: "a.gif", Data: []byte("x")}})
	assert.EqualError(t, err, "Erreur 400")
	assert.ErrorIs(t, err, common.ErrUnsupportedFileType)
}

func TestLocal_DiscardOnlyDrafts(t *testing.T) {
	ctx := context.Background()
	svc := service.NewBillService(repository.NewMemoryStore().Bills(), "http://billed.test", zap.NewNop())
	st := NewLocal(svc, model.Session{Type: model.UserTypeEmployee, Email: "e@e"})
	receipt := model.FileAttachment{Name: "image.png", ContentType: "image/png", Data: []byte("img")}

	draft, err := st.Bills().Create(ctx, CreateRequest{File: receipt})
	require.NoError(t, err)
	require.NoError(t, st.Bills().Discard(ctx, draft.Key))
	assert.EqualError(t, st.Bills().Discard(ctx, draft.Key), "Erreur 404")

	kept, err := st.Bills().Create(ctx, CreateRequest{File: receipt})
	require.NoError(t, err)
	_, err = st.Bills().Update(ctx, UpdateRequest{Selector: kept.Key, Bill: model.Bill{Type: "Transports", Date: "2024-04-24"}})
	require.NoError(t, err)
	err = st.Bills().Discard(ctx, kept.Key)
	assert.EqualError(t, err, "Erreur 409")
	assert.ErrorIs(t, err, common.ErrConflict)
}
