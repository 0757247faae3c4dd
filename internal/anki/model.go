package anki

// PimsleurModelID is the note type id. It must stay fixed so that notes from
// a re-generated package update the existing note type on import.
const PimsleurModelID int64 = 1862712697

// Field indexes of the Pimsleur note type
const (
	FieldPhrase = iota
	FieldTranslation
	FieldSound
)

// Template is one card type of a note type
type Template struct {
	Name     string
	Question string
	Answer   string
	Requires []int // Card is generated when any of these fields is non-empty
}

// Model is an Anki note type
type Model struct {
	ID        int64
	Name      string
	Fields    []string
	Templates []Template
	CSS       string
}

// PimsleurModel returns the three-field note type shared by all decks
func PimsleurModel() *Model {
	return &Model{
		ID:     PimsleurModelID,
		Name:   "Pimsleur Model",
		Fields: []string{"Phrase", "Translation", "Sound"},
		Templates: []Template{
			{
				Name:     "Forwards",
				Question: "{{Phrase}}<br>{{Sound}}",
				Answer:   "{{FrontSide}}<hr>{{Translation}}",
				Requires: []int{FieldPhrase, FieldSound},
			},
			{
				Name:     "Reverse",
				Question: "{{Translation}}",
				Answer:   "{{FrontSide}}<hr>{{Phrase}}<br>{{Sound}}",
				Requires: []int{FieldTranslation},
			},
			{
				Name:     "Forwards (sound only)",
				Question: "{{Sound}}",
				Answer:   "{{FrontSide}}<hr>{{Phrase}}<hr>{{Translation}}",
				Requires: []int{FieldSound},
			},
		},
		CSS: `.card {
 font-family: arial;
 font-size: 20px;
 text-align: center;
 color: black;
 background-color: white;
}
`,
	}
}

// CardOrdinals returns the templates that produce a card for these field values
func (m *Model) CardOrdinals(fields []string) []int {
	var ords []int
	for ord, tmpl := range m.Templates {
		for _, idx := range tmpl.Requires {
			if idx < len(fields) && fields[idx] != "" {
				ords = append(ords, ord)
				break
			}
		}
	}
	return ords
}

// config returns the JSON representation stored in the col.models column
func (m *Model) config(deckID, mod int64) map[string]interface{} {
	flds := make([]map[string]interface{}, 0, len(m.Fields))
	for i, name := range m.Fields {
		flds = append(flds, map[string]interface{}{
			"name":   name,
			"ord":    i,
			"sticky": false,
			"rtl":    false,
			"font":   "Arial",
			"size":   20,
			"media":  []string{},
		})
	}

	tmpls := make([]map[string]interface{}, 0, len(m.Templates))
	req := make([][]interface{}, 0, len(m.Templates))
	for i, tmpl := range m.Templates {
		tmpls = append(tmpls, map[string]interface{}{
			"name":  tmpl.Name,
			"ord":   i,
			"qfmt":  tmpl.Question,
			"afmt":  tmpl.Answer,
			"did":   nil,
			"bqfmt": "",
			"bafmt": "",
		})
		req = append(req, []interface{}{i, "any", tmpl.Requires})
	}

	return map[string]interface{}{
		"id":    m.ID,
		"name":  m.Name,
		"type":  0,
		"mod":   mod,
		"usn":   -1,
		"sortf": 0,
		"did":   deckID,
		"req":   req,
		"vers":  []int{},
		"tags":  []string{},
		"latexPre": `\documentclass[12pt]{article}
\special{papersize=3in,5in}
\usepackage[utf8]{inputenc}
\usepackage{amssymb,amsmath}
\pagestyle{empty}
\setlength{\parindent}{0in}
\begin{document}`,
		"latexPost": `\end{document}`,
		"flds":      flds,
		"tmpls":     tmpls,
		"css":       m.CSS,
	}
}
