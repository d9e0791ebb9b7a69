package model

import "testing"

func TestDocumentFilterMatch(t *testing.T) {
	doc := &Document{
		Title:    "Soal IPAS - Sistem pernapasan",
		Type:     DocumentTypeSoal,
		Metadata: map[string]string{"mapel": "IPAS"},
	}
	tests := []struct {
		name   string
		filter DocumentFilter
		want   bool
	}{
		{"empty", DocumentFilter{}, true},
		{"type", DocumentFilter{Type: DocumentTypeSoal}, true},
		{"other type", DocumentFilter{Type: DocumentTypeModul}, false},
		{"title", DocumentFilter{Query: "PERNAPASAN"}, true},
		{"mapel", DocumentFilter{Query: "ipas"}, true},
		{"type and query", DocumentFilter{Type: DocumentTypeModul, Query: "ipas"}, false},
		{"no match", DocumentFilter{Query: "pecahan"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(doc); got != tt.want {
				t.Errorf("Match = %v, want %v", got, tt.want)
			}
		})
	}

	if (DocumentFilter{Query: "x"}).Match(&Document{Title: "y"}) {
		t.Error("nil metadata should not match")
	}
}
