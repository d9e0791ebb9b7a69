package gateway

import (
	"strings"
	"testing"

	"github.com/gurukit/gurukit-backend/internal/model"
)

func TestSoalRequest(t *testing.T) {
	cfg := &model.SoalConfig{
		Curriculum:     "Kurikulum Merdeka",
		Level:          "SD",
		Phase:          "C",
		Grade:          "5",
		Subject:        "IPAS",
		Topic:          "Sistem pernapasan",
		QuestionCount:  10,
		QuestionForms:  []string{"Pilihan Ganda", "Uraian"},
		Difficulty:     "Sedang",
		SourceMaterial: "Paru-paru adalah organ utama.",
	}
	req := SoalRequest(cfg)

	if !req.JSON || req.System == "" {
		t.Fatalf("request = %+v", req)
	}
	for _, want := range []string{
		"Buat 10 soal Pilihan Ganda + Uraian",
		"Fase: C (Kelas 5)",
		autoCognitiveSpread,
		"SUMBER MATERI DARI GURU:\nParu-paru adalah organ utama.",
		`"kunci_jawaban"`,
		`"kisi_kisi"`,
	} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	cfg.CognitiveLevel = []string{"C4", "C5"}
	cfg.SourceMaterial = ""
	req = SoalRequest(cfg)
	if !strings.Contains(req.Prompt, "Fokus pada level: C4, C5") {
		t.Error("explicit cognitive levels not used")
	}
	if strings.Contains(req.Prompt, "SUMBER MATERI") {
		t.Error("empty source material still rendered")
	}
}

func TestModulRequest(t *testing.T) {
	req := ModulRequest(&model.ModulConfig{
		Level:            "SMP",
		Phase:            "D",
		Grade:            "7",
		Subject:          "Matematika",
		MainTopic:        "Bilangan bulat",
		TimeAllocation:   "2 x 40 menit",
		LearningModel:    "Problem Based Learning",
		PancasilaProfile: []string{"Bernalar kritis", "Mandiri"},
	})
	if req.JSON {
		t.Error("modul must not request JSON")
	}
	for _, want := range []string{"Materi Pokok: Bilangan bulat", "Fase/Kelas: D / 7", "Bernalar kritis, Mandiri", "Target Siswa: Reguler"} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
