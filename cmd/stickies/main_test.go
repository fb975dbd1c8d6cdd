package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/oliverisaac/stickies/storage"
	"github.com/oliverisaac/stickies/store"
	"github.com/oliverisaac/stickies/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*echo.Echo, *store.Store, *storage.Memory) {
	t.Helper()
	cfg := types.Config{
		CookieSecret: []byte("test-secret"),
		Location:     time.UTC,
	}
	slot := storage.NewMemory()
	notes := store.New(slot)
	notes.Load(context.Background())
	return newServer(cfg, notes), notes, slot
}

func do(e *echo.Echo, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func mustCreate(t *testing.T, notes *store.Store, content string) types.Note {
	t.Helper()
	ctx := context.Background()
	n, err := notes.Create(ctx)
	require.NoError(t, err)
	if content != "" {
		n, _, err = notes.UpdateContent(ctx, n.ID, content)
		require.NoError(t, err)
	}
	return n
}

func TestBoardPage(t *testing.T) {
	e, notes, _ := newTestServer(t)
	older := mustCreate(t, notes, "older")
	newer := mustCreate(t, notes, "newer")

	rec := do(e, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `id="searchInput"`)
	assert.Contains(t, body, `id="createNoteBtn"`)
	assert.Less(t, strings.Index(body, newer.ID), strings.Index(body, older.ID))
}

func TestStaticAssets(t *testing.T) {
	e, _, _ := newTestServer(t)
	rec := do(e, http.MethodGet, "/static/stickies.css", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".color-red")

	rec = do(e, http.MethodGet, "/static/stickies.js", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "function stickiesRecolor")
}

func TestPanicIsRecovered(t *testing.T) {
	e, _, _ := newTestServer(t)
	e.GET("/boom", func(c echo.Context) error {
		panic("boom")
	})

	rec := do(e, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(e, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "server keeps serving after a panic")
}

func TestCreateNote(t *testing.T) {
	e, notes, slot := newTestServer(t)
	existing := mustCreate(t, notes, "first")

	rec := do(e, http.MethodPost, "/notes", url.Values{})
	require.Equal(t, http.StatusOK, rec.Code)

	all := notes.Notes()
	require.Len(t, all, 2)
	assert.Equal(t, existing.ID, all[1].ID)

	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, `class="note-card`))
	assert.Contains(t, body, `data-id="`+all[0].ID+`"`)
	assert.Contains(t, body, "color-white")

	stored, err := slot.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(stored), all[0].ID)
}

func TestUpdateNoteContent(t *testing.T) {
	e, notes, _ := newTestServer(t)
	n := mustCreate(t, notes, "")

	rec := do(e, http.MethodPost, "/notes/"+n.ID+"/content", url.Values{"content": {"hello"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	got, ok := notes.Get(n.ID)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Content)
}

func TestUpdateNoteColor(t *testing.T) {
	e, notes, _ := newTestServer(t)
	n := mustCreate(t, notes, "")

	rec := do(e, http.MethodPost, "/notes/"+n.ID+"/color?color=color-red", url.Values{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String(), "the card is recolored in place, never re-rendered")

	got, _ := notes.Get(n.ID)
	assert.Equal(t, types.ColorRed, got.Color)

	rec = do(e, http.MethodPost, "/notes/"+n.ID+"/color", url.Values{"color": {"color-purple"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	got, _ = notes.Get(n.ID)
	assert.Equal(t, types.ColorRed, got.Color)
}

func TestUnknownNoteIsIgnored(t *testing.T) {
	e, notes, _ := newTestServer(t)
	n := mustCreate(t, notes, "keep")
	before := notes.Notes()

	rec := do(e, http.MethodPost, "/notes/missing/content", url.Values{"content": {"x"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodPost, "/notes/missing/color", url.Values{"color": {"color-blue"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodGet, "/notes/missing/delete", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, before, notes.Notes())
	assert.Equal(t, "keep", before[0].Content)
	assert.Equal(t, n.ID, before[0].ID)
}

func TestSearchNotes(t *testing.T) {
	e, notes, _ := newTestServer(t)
	milk := mustCreate(t, notes, "Buy milk")
	mom := mustCreate(t, notes, "Call mom")

	rec := do(e, http.MethodGet, "/notes?q=MILK", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, milk.ID)
	assert.NotContains(t, body, mom.ID)

	rec = do(e, http.MethodGet, "/notes?q=", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Equal(t, 2, strings.Count(body, `class="note-card`))
	assert.Less(t, strings.Index(body, mom.ID), strings.Index(body, milk.ID))
}

func TestDeleteNote(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		e, notes, slot := newTestServer(t)
		n := mustCreate(t, notes, "bye")

		rec := do(e, http.MethodGet, "/notes/"+n.ID+"/delete", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Are you sure you want to delete this note?")
		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)

		assert.Len(t, notes.Notes(), 1, "asking must not delete")

		rec = do(e, http.MethodPost, "/notes/"+n.ID+"/delete?confirm=yes", url.Values{}, cookies...)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Empty(t, notes.Notes())

		reloaded := store.New(slot)
		reloaded.Load(context.Background())
		assert.Empty(t, reloaded.Notes())
	})

	t.Run("cancelled", func(t *testing.T) {
		e, notes, _ := newTestServer(t)
		n := mustCreate(t, notes, "stay")

		rec := do(e, http.MethodGet, "/notes/"+n.ID+"/delete", nil)
		cookies := rec.Result().Cookies()

		rec = do(e, http.MethodPost, "/notes/"+n.ID+"/delete?confirm=no", url.Values{}, cookies...)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, notes.Notes(), 1)
	})

	t.Run("confirm without asking first", func(t *testing.T) {
		e, notes, _ := newTestServer(t)
		n := mustCreate(t, notes, "stay")

		rec := do(e, http.MethodPost, "/notes/"+n.ID+"/delete?confirm=yes", url.Values{})
		require.Equal(t, http.StatusNoContent, rec.Code, "the card must stay on the page")
		assert.Len(t, notes.Notes(), 1)
	})

	t.Run("confirm for a different note", func(t *testing.T) {
		e, notes, _ := newTestServer(t)
		asked := mustCreate(t, notes, "asked")
		other := mustCreate(t, notes, "other")

		rec := do(e, http.MethodGet, "/notes/"+asked.ID+"/delete", nil)
		cookies := rec.Result().Cookies()

		rec = do(e, http.MethodPost, "/notes/"+other.ID+"/delete?confirm=yes", url.Values{}, cookies...)
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Len(t, notes.Notes(), 2)
	})

	t.Run("two dialogs open", func(t *testing.T) {
		e, notes, _ := newTestServer(t)
		a := mustCreate(t, notes, "a")
		b := mustCreate(t, notes, "b")
		c := mustCreate(t, notes, "c")

		rec := do(e, http.MethodGet, "/notes/"+a.ID+"/delete", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()

		rec = do(e, http.MethodGet, "/notes/"+b.ID+"/delete", nil, cookies...)
		require.Equal(t, http.StatusOK, rec.Code)
		cookies = rec.Result().Cookies()

		rec = do(e, http.MethodGet, "/notes/"+c.ID+"/delete", nil, cookies...)
		require.Equal(t, http.StatusOK, rec.Code)
		cookies = rec.Result().Cookies()

		// Cancelling b must leave the dialogs of a and c pending.
		rec = do(e, http.MethodPost, "/notes/"+b.ID+"/delete?confirm=no", url.Values{}, cookies...)
		require.Equal(t, http.StatusOK, rec.Code)
		cookies = rec.Result().Cookies()

		rec = do(e, http.MethodPost, "/notes/"+a.ID+"/delete?confirm=yes", url.Values{}, cookies...)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
		cookies = rec.Result().Cookies()

		_, ok := notes.Get(a.ID)
		assert.False(t, ok, "a was confirmed")

		rec = do(e, http.MethodPost, "/notes/"+b.ID+"/delete?confirm=yes", url.Values{}, cookies...)
		require.Equal(t, http.StatusNoContent, rec.Code, "b was cancelled")
		_, ok = notes.Get(b.ID)
		assert.True(t, ok)

		rec = do(e, http.MethodPost, "/notes/"+c.ID+"/delete?confirm=yes", url.Values{}, cookies...)
		require.Equal(t, http.StatusOK, rec.Code)
		_, ok = notes.Get(c.ID)
		assert.False(t, ok, "c was still pending")
	})
}

func TestOpenSlot(t *testing.T) {
	dir := t.TempDir()

	for _, backend := range []string{types.StorageFile, types.StorageSQLite, types.StorageMemory} {
		t.Run(backend, func(t *testing.T) {
			cfg := types.Config{
				Storage:  backend,
				DataPath: dir + "/notes-data.json",
				DBPath:   dir + "/stickies.db",
				SlotKey:  "notes-data",
			}
			slot, err := openSlot(cfg)
			require.NoError(t, err)

			ctx := context.Background()
			require.NoError(t, slot.Save(ctx, []byte("[]")))
			got, err := slot.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []byte("[]"), got)
		})
	}
}
