package views

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageIndex       = "index"
	FragmentGrid    = "notes-grid"
	FragmentCard    = "note-card"
	FragmentConfirm = "delete-confirm"
)

// Renderer executes the embedded templates. It satisfies echo.Renderer.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{
		tmpl: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

// RenderAll writes every card of board, in order, replacing the grid contents.
func (r *Renderer) RenderAll(w io.Writer, board Board) error {
	return r.tmpl.ExecuteTemplate(w, FragmentGrid, board)
}

// RenderOne writes a single card.
func (r *Renderer) RenderOne(w io.Writer, card Card) error {
	return r.tmpl.ExecuteTemplate(w, FragmentCard, card)
}
