package sheets

import (
	"fmt"
	"strings"
	"time"
)

// Locale holds the names used when a new month tab is created.
type Locale struct {
	Months [12]string
	Header []string
}

var locales = map[string]Locale{
	"en": {
		Months: [12]string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
		Header: []string{"Date", "Amount (€)", "Category", "Description", "Type"},
	},
	"it": {
		Months: [12]string{
			"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
			"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre",
		},
		Header: []string{"Data", "Importo (€)", "Categoria", "Descrizione", "Tipo"},
	},
}

// LocaleFor returns the named locale, falling back to English.
func LocaleFor(name string) Locale {
	if l, ok := locales[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l
	}
	return locales["en"]
}

// TabName is "<MonthName> <Year>" for t, e.g. "March 2026".
func (l Locale) TabName(t time.Time) string {
	return fmt.Sprintf("%s %d", l.Months[t.Month()-1], t.Year())
}

// HeaderRow is the first row written to a freshly created tab.
func (l Locale) HeaderRow() []interface{} {
	row := make([]interface{}, len(l.Header))
	for i, h := range l.Header {
		row[i] = h
	}
	return row
}
