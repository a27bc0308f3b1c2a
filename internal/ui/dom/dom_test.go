package dom

import (
	"context"
	"errors"
	"testing"

	"billed/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const form = `<form data-testid="form"><select data-testid="sel"><option>A</option><option value="b" selected>B</option></select>
<input data-testid="name"><textarea data-testid="area">hello</textarea><input type="file" data-testid="file">
<button type="submit" id="send">Envoyer</button><button type="button" id="other">Autre</button></form>`

func mounted(t *testing.T, markup string) *Document {
	t.Helper()
	doc := NewDocument()
	root := doc.CreateRoot()
	require.NoError(t, root.SetInnerHTML(markup))
	return doc
}

func TestDocument_MountAndQuery(t *testing.T) {
	doc := mounted(t, form)

	_, err := doc.GetByID("root")
	require.NoError(t, err)

	sel, err := doc.GetByTestID("sel")
	require.NoError(t, err)
	assert.Equal(t, "b", sel.Value())

	area, err := doc.GetByTestID("area")
	require.NoError(t, err)
	assert.Equal(t, "hello", area.Value())

	_, err = doc.GetByTestID("missing")
	assert.ErrorIs(t, err, ErrElementNotFound)

	btn, err := doc.GetByText("Envoyer")
	require.NoError(t, err)
	assert.Equal(t, "send", btn.ID())
}

func TestDocument_GetByTextInnermost(t *testing.T) {
	doc := mounted(t, `<div id="outer"><div id="inner">Erreur 404</div></div><p>Erreur 404</p>`)

	el, err := doc.GetByText("Erreur 404")
	require.NoError(t, err)
	assert.Equal(t, "inner", el.ID())
}

func TestElement_SetInnerHTMLReplacesChildren(t *testing.T) {
	doc := mounted(t, form)
	root, err := doc.GetByID("root")
	require.NoError(t, err)

	require.NoError(t, root.SetInnerHTML(`<p data-testid="p">new</p>`))
	assert.Nil(t, doc.QueryByTestID("sel"))
	assert.NotNil(t, doc.QueryByTestID("p"))

	out, err := doc.HTML()
	require.NoError(t, err)
	assert.Contains(t, out, `<div id="root"><p data-testid="p">new</p></div>`)
}

func TestElement_ClassName(t *testing.T) {
	doc := mounted(t, `<div data-testid="icon-mail" class="x"></div>`)
	el, err := doc.GetByTestID("icon-mail")
	require.NoError(t, err)

	assert.Equal(t, "x", el.ClassName())
	el.SetClassName("active-icon")
	assert.Equal(t, "active-icon", el.ClassName())
}

func TestEvents_ChangeAndFiles(t *testing.T) {
	ctx := context.Background()
	doc := mounted(t, form)
	input, err := doc.GetByTestID("file")
	require.NoError(t, err)

	var got []model.FileAttachment
	input.AddEventListener(EventChange, func(_ context.Context, ev *Event) error {
		got = ev.Files
		return nil
	})

	file := model.FileAttachment{Name: "image.png", ContentType: "image/png", Data: []byte("(⌐□_□)")}
	require.NoError(t, FireFileChange(ctx, input, file))
	assert.Equal(t, []model.FileAttachment{file}, got)
	assert.Equal(t, []model.FileAttachment{file}, input.Files())
	assert.Equal(t, `C:\fakepath\image.png`, input.Value())

	input.SetValue("")
	assert.Empty(t, input.Files())

	name, _ := doc.GetByTestID("name")
	require.NoError(t, FireChange(ctx, name, "Avion"))
	assert.Equal(t, "Avion", name.Value())
}

func TestEvents_ClickSubmitsForm(t *testing.T) {
	ctx := context.Background()
	doc := mounted(t, form)
	f, _ := doc.GetByTestID("form")

	submits := 0
	f.AddEventListener(EventSubmit, func(_ context.Context, ev *Event) error {
		ev.PreventDefault()
		submits++
		return nil
	})

	send, _ := doc.GetByID("send")
	require.NoError(t, Click(ctx, send))
	assert.Equal(t, 1, submits)

	other, _ := doc.GetByID("other")
	require.NoError(t, Click(ctx, other))
	assert.Equal(t, 1, submits)
}

func TestEvents_ErrorsAreJoinedAndBubble(t *testing.T) {
	ctx := context.Background()
	doc := mounted(t, form)
	f, _ := doc.GetByTestID("form")
	name, _ := doc.GetByTestID("name")

	errA := errors.New("a")
	errB := errors.New("b")
	name.AddEventListener(EventChange, func(context.Context, *Event) error { return errA })
	f.AddEventListener(EventChange, func(context.Context, *Event) error { return errB })

	err := FireChange(ctx, name, "x")
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestEvents_StopPropagation(t *testing.T) {
	ctx := context.Background()
	doc := mounted(t, form)
	f, _ := doc.GetByTestID("form")
	name, _ := doc.GetByTestID("name")

	reached := false
	name.AddEventListener(EventChange, func(_ context.Context, ev *Event) error {
		ev.StopPropagation()
		return nil
	})
	f.AddEventListener(EventChange, func(context.Context, *Event) error {
		reached = true
		return nil
	})

	require.NoError(t, FireChange(ctx, name, "x"))
	assert.False(t, reached)
}

func TestDocument_Title(t *testing.T) {
	doc := NewDocument()
	doc.SetTitle("Mes notes de frais")
	out, err := doc.HTML()
	require.NoError(t, err)
	assert.Contains(t, out, "<title>Mes notes de frais</title>")
}

func TestDispatch_WithoutTarget(t *testing.T) {
	doc := mounted(t, form)

	err := doc.Dispatch(context.Background(), &Event{Type: EventClick})
	assert.ErrorIs(t, err, ErrElementNotFound)
	assert.ErrorIs(t, doc.Dispatch(context.Background(), nil), ErrElementNotFound)
}
