package main

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/oliverisaac/stickies/store"
	"github.com/oliverisaac/stickies/types"
	"github.com/oliverisaac/stickies/views"
	"github.com/pkg/errors"
)

// render buffers a fragment so a template error still yields a clean 500
// instead of a half-written 200.
func render(c echo.Context, code int, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return errors.Wrap(err, "Rendering fragment")
	}
	return c.HTMLBlob(code, buf.Bytes())
}

// searchNotes re-renders the whole grid from the notes matching q. An empty
// q brings back every note.
func searchNotes(notes *store.Store, r *views.Renderer, loc *time.Location) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := c.QueryParam("q")
		board := views.Board{
			Query: q,
			Cards: views.NewCards(notes.Query(q), loc),
		}
		return render(c, http.StatusOK, func(w io.Writer) error {
			return r.RenderAll(w, board)
		})
	}
}

// createNote answers with the new card alone; the page prepends it.
func createNote(notes *store.Store, r *views.Renderer, loc *time.Location) echo.HandlerFunc {
	return func(c echo.Context) error {
		note, err := notes.Create(c.Request().Context())
		if err != nil {
			return errors.Wrap(err, "Creating note")
		}

		return render(c, http.StatusOK, func(w io.Writer) error {
			return r.RenderOne(w, views.NewCard(note, loc))
		})
	}
}

func updateNoteContent(notes *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")

		_, _, err := notes.UpdateContent(c.Request().Context(), id, c.FormValue("content"))
		if err != nil {
			return errors.Wrapf(err, "Updating content of note %s", id)
		}

		return c.NoContent(http.StatusNoContent)
	}
}

// updateNoteColor stores the new color and answers 200 with no body. The
// card is recolored in place by the page, so the textarea is never swapped
// out from under the user. An unknown note answers 204 and stays as it is.
func updateNoteColor(notes *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")

		color, ok := types.ParseColor(c.FormValue("color"))
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown note color")
		}

		_, found, err := notes.UpdateColor(c.Request().Context(), id, color)
		if err != nil {
			return errors.Wrapf(err, "Updating color of note %s", id)
		}
		if !found {
			return c.NoContent(http.StatusNoContent)
		}

		return c.NoContent(http.StatusOK)
	}
}
