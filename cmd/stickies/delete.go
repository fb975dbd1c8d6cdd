package main

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/oliverisaac/stickies/store"
	"github.com/oliverisaac/stickies/views"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// pendingDeleteKey holds the ids of every note with an open confirmation
// dialog, so several dialogs can be open at once.
const pendingDeleteKey = "pending-delete"

func pendingDeletes(sess *sessions.Session) []string {
	ids, _ := sess.Values[pendingDeleteKey].([]string)
	return ids
}

// requestNoteDelete opens a pending deletion: the note id joins the pending
// set in the session and the confirmation dialog is returned.
func requestNoteDelete(notes *store.Store, loc *time.Location) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")

		note, ok := notes.Get(id)
		if !ok {
			return c.NoContent(http.StatusNoContent)
		}

		sess, _ := session.Get(sessionName, c)
		pending := pendingDeletes(sess)
		if !slices.Contains(pending, id) {
			sess.Values[pendingDeleteKey] = append(pending, id)
			if err := sess.Save(c.Request(), c.Response()); err != nil {
				return errors.Wrap(err, "Saving session")
			}
		}

		return c.Render(200, views.FragmentConfirm, views.NewCard(note, loc))
	}
}

// resolveNoteDelete settles the pending deletion of one note, leaving the
// other pending ids alone.
//
// A confirmation removes the note and answers with an empty body, which drops
// the card. A cancellation answers with an empty body too, which drops only
// the dialog. A confirmation for a note that was never asked about answers
// 204 so the page keeps the card.
func resolveNoteDelete(notes *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")

		sess, _ := session.Get(sessionName, c)
		pending := pendingDeletes(sess)
		asked := slices.Contains(pending, id)
		confirmed := c.QueryParam("confirm") == "yes"

		if confirmed && !asked {
			logrus.Debugf("Ignoring unrequested delete of note %s", id)
			return c.NoContent(http.StatusNoContent)
		}

		if asked {
			sess.Values[pendingDeleteKey] = slices.DeleteFunc(slices.Clone(pending), func(p string) bool { return p == id })
			if err := sess.Save(c.Request(), c.Response()); err != nil {
				return errors.Wrap(err, "Saving session")
			}
		}

		decision := notes.RequestDelete(id)

		if !confirmed {
			logrus.Debugf("Delete of note %s cancelled", id)
			if err := decision.Cancel(); err != nil {
				return errors.Wrap(err, "Cancelling delete")
			}
			return c.HTML(http.StatusOK, "")
		}

		if _, err := decision.Confirm(c.Request().Context()); err != nil {
			return errors.Wrapf(err, "Deleting note %s", id)
		}

		return c.HTML(http.StatusOK, "")
	}
}
