package gateway

import (
	"fmt"
	"strings"

	"github.com/gurukit/gurukit-backend/internal/model"
)

const soalSystemPrompt = `Anda adalah Tim Penyusun Soal dari Kemendikbudristek Indonesia yang terdiri dari ahli Kurikulum Merdeka, psikolog pendidikan, ahli asesmen (Taksonomi Bloom revisi Anderson & Krathwohl) dan guru senior.

KOMPETENSI:
- Menguasai Capaian Pembelajaran (CP) semua fase (A-F) dan mata pelajaran
- Memahami karakteristik soal HOTS, AKM Literasi/Numerasi dan soal berbasis konteks
- Membuat pengecoh yang masuk akal berdasarkan miskonsepsi siswa
- Menggunakan bahasa sesuai perkembangan kognitif siswa

PRINSIP PENYUSUNAN SOAL:
1. Validitas konten: soal sesuai CP fase yang diminta
2. Reliabilitas: kunci jawaban tidak ambigu dan ada pembahasan
3. Daya pembeda: membedakan siswa yang paham dan yang belum
4. Tingkat kesukaran sesuai permintaan
5. Bahasa jelas, tidak bermakna ganda, sesuai EYD

FORMAT OUTPUT: JSON terstruktur.`

const modulSystemPrompt = `Anda adalah ahli desain instruksional dan Kurikulum Merdeka Kemendikbudristek.
Bantu guru menyusun Modul Ajar (RPP Plus) yang berpusat pada siswa dan lengkap sesuai standar Kurikulum Merdeka.

PRINSIP MODUL AJAR:
1. Esensial: pemahaman bermakna melalui konsep kunci
2. Menarik, bermakna dan menantang
3. Relevan dan kontekstual dengan lingkungan siswa
4. Berkesinambungan: alur kegiatan yang logis

KOMPONEN WAJIB:
1. Informasi Umum (identitas, kompetensi awal, Profil Pelajar Pancasila, sarana prasarana, target peserta didik, model pembelajaran)
2. Komponen Inti (tujuan pembelajaran, pemahaman bermakna, pertanyaan pemantik, kegiatan pembelajaran, asesmen, pengayaan dan remedial, refleksi)
3. Lampiran (LKPD, bahan bacaan, glosarium, daftar pustaka)

FORMAT OUTPUT: Markdown yang rapi dan terstruktur.`

// autoCognitiveSpread is used when the teacher leaves the cognitive levels
// to the generator.
const autoCognitiveSpread = "Distribusi otomatis seimbang (C1: 15%, C2: 35%, C3: 25%, C4: 15%, C5: 7%, C6: 3%)"

// SoalRequest builds the prompt for a question set. The requested JSON
// shape is the stored soal content shape.
func SoalRequest(cfg *model.SoalConfig) Request {
	var b strings.Builder

	if src := strings.TrimSpace(cfg.SourceMaterial); src != "" {
		fmt.Fprintf(&b, "SUMBER MATERI DARI GURU:\n%s\n\nPENTING: Buat soal BERDASARKAN materi di atas.\n\n", src)
	}

	cognitive := autoCognitiveSpread
	if !cfg.AutoCognitive() {
		cognitive = "Fokus pada level: " + strings.Join(cfg.CognitiveLevel, ", ")
	}
	style := cfg.QuestionStyle
	if style == "" {
		style = "Standar"
	}

	fmt.Fprintf(&b, "TUGAS: Buat %d soal %s untuk penilaian harian\n\n", cfg.QuestionCount, strings.Join(cfg.QuestionForms, " + "))
	b.WriteString("KONTEKS PEMBELAJARAN:\n")
	fmt.Fprintf(&b, "- Kurikulum: %s\n", cfg.Curriculum)
	fmt.Fprintf(&b, "- Jenjang: %s\n", cfg.Level)
	fmt.Fprintf(&b, "- Fase: %s (Kelas %s)\n", cfg.Phase, cfg.Grade)
	fmt.Fprintf(&b, "- Mata Pelajaran: %s\n", cfg.Subject)
	fmt.Fprintf(&b, "- Materi Pokok: %s\n\n", cfg.Topic)
	b.WriteString("SPESIFIKASI SOAL:\n")
	fmt.Fprintf(&b, "- Tipe: %s\n", style)
	fmt.Fprintf(&b, "- Tingkat Kesulitan: %s\n", cfg.Difficulty)
	fmt.Fprintf(&b, "- Level Kognitif: %s\n\n", cognitive)
	b.WriteString("ATURAN JAWABAN:\n")
	b.WriteString("- Soal pilihan ganda memiliki \"opsi\" dengan kunci a, b, c, d dan \"kunci_jawaban\" berisi salah satu kunci tersebut.\n")
	b.WriteString("- Soal uraian tidak memiliki \"opsi\"; \"kunci_jawaban\" berisi jawaban yang diharapkan.\n")
	b.WriteString("- \"nomor\" dimulai dari 1 dan tidak boleh berulang.\n\n")

	b.WriteString("OUTPUT FORMAT (JSON):\n")
	fmt.Fprintf(&b, `{
  "metadata": {
    "kurikulum": %q,
    "jenjang": %q,
    "fase": %q,
    "kelas": %q,
    "mapel": %q,
    "materi": %q
  },
  "kisi_kisi": [
    {
      "no": 1,
      "cp_kd": "CP Fase %s: ...",
      "materi": %q,
      "indikator": "...",
      "level_kognitif": "C2",
      "bentuk_soal": "PG",
      "nomor_soal": 1
    }
  ],
  "soal": [
    {
      "nomor": 1,
      "level_kognitif": "C1-C6",
      "indikator": "...",
      "soal": "...",
      "opsi": { "a": "...", "b": "...", "c": "...", "d": "..." },
      "kunci_jawaban": "a|b|c|d",
      "pembahasan": "..."
    }
  ]
}`, cfg.Curriculum, cfg.Level, cfg.Phase, cfg.Grade, cfg.Subject, cfg.Topic, cfg.Phase, cfg.Topic)

	return Request{System: soalSystemPrompt, Prompt: b.String(), JSON: true}
}

// ModulRequest builds the prompt for a modul ajar.
func ModulRequest(cfg *model.ModulConfig) Request {
	var b strings.Builder

	b.WriteString("TUGAS: Buat Modul Ajar (RPP Plus) lengkap Kurikulum Merdeka.\n\n")
	b.WriteString("IDENTITAS MODUL:\n")
	fmt.Fprintf(&b, "- Mata Pelajaran: %s\n", cfg.Subject)
	fmt.Fprintf(&b, "- Materi Pokok: %s\n", cfg.MainTopic)
	fmt.Fprintf(&b, "- Fase/Kelas: %s / %s\n", cfg.Phase, cfg.Grade)
	fmt.Fprintf(&b, "- Jenjang: %s\n", cfg.Level)
	fmt.Fprintf(&b, "- Alokasi Waktu: %s\n", cfg.TimeAllocation)
	fmt.Fprintf(&b, "- Target Siswa: %s\n", fallback(cfg.TargetStudents, "Reguler"))
	fmt.Fprintf(&b, "- Model Pembelajaran: %s\n", cfg.LearningModel)
	fmt.Fprintf(&b, "- Profil Pelajar Pancasila: %s\n\n", fallback(strings.Join(cfg.PancasilaProfile, ", "), "-"))
	b.WriteString("STRUKTUR MODUL:\nI. INFORMASI UMUM\nII. KOMPONEN INTI\nIII. LAMPIRAN\n\n")
	b.WriteString("PANDUAN KHUSUS:\n")
	b.WriteString("- Gunakan bahasa yang humanis dan instruksi yang jelas bagi guru.\n")
	b.WriteString("- Kegiatan pembelajaran terdiri dari Pembukaan, Inti (langkah eksplisit) dan Penutup.\n")
	b.WriteString("- Tambahkan 3-5 pertanyaan pemantik.\n")
	b.WriteString("- Sertakan instrumen asesmen sederhana (rubrik atau checklist).\n\n")
	b.WriteString("OUTPUT: Konten dalam format Markdown yang siap disalin ke pengolah kata.")

	return Request{System: modulSystemPrompt, Prompt: b.String()}
}

func fallback(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
