package types

type BoardPageData struct {
	Query string
	Notes []Note
}

func (d *BoardPageData) WithQuery(q string) *BoardPageData {
	d.Query = q
	return d
}

func (d *BoardPageData) WithNotes(notes []Note) *BoardPageData {
	d.Notes = append(d.Notes, notes...)
	return d
}
