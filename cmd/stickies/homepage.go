package main

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/oliverisaac/stickies/store"
	"github.com/oliverisaac/stickies/types"
	"github.com/oliverisaac/stickies/views"
	"github.com/sirupsen/logrus"
)

func boardPageHandler(notes *store.Store, loc *time.Location) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := c.QueryParam("q")

		pageData := types.BoardPageData{}
		pageData.
			WithQuery(q).
			WithNotes(notes.Query(q))

		logrus.Debugf("Generating board with %d notes", len(pageData.Notes))

		return c.Render(200, views.PageIndex, views.NewBoard(pageData, loc))
	}
}
