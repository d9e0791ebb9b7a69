package model

// CognitiveAuto asks the generator to distribute cognitive levels itself.
const CognitiveAuto = "otomatis"

// SoalConfig configures a soal generation request.
type SoalConfig struct {
	Curriculum     string   `json:"kurikulum" binding:"required,max=100"`
	Level          string   `json:"jenjang" binding:"omitempty,max=50"`
	Phase          string   `json:"fase" binding:"required,fase"`
	Grade          string   `json:"kelas" binding:"required,max=10"`
	Subject        string   `json:"mata_pelajaran" binding:"omitempty,max=100"`
	Topic          string   `json:"materi" binding:"required,min=2,max=500"`
	QuestionCount  int      `json:"jumlah_soal" binding:"required,min=1,max=50"`
	QuestionForms  []string `json:"jenis_soal" binding:"required,min=1,dive,required,max=50"`
	Difficulty     string   `json:"tingkat_kesulitan" binding:"required,oneof=Mudah Sedang Sulit"`
	CognitiveLevel []string `json:"level_kognitif" binding:"omitempty,dive,oneof=C1 C2 C3 C4 C5 C6"`
	QuestionStyle  string   `json:"tipe_soal" binding:"omitempty,oneof=Standar 'Soal HOTS' 'Soal AKM'"`
	SourceMaterial string   `json:"sumber_materi" binding:"omitempty,max=20000"`
}

// AutoCognitive reports whether the generator picks the cognitive distribution.
func (c *SoalConfig) AutoCognitive() bool {
	return len(c.CognitiveLevel) == 0
}

// ModulConfig configures a modul ajar generation request.
type ModulConfig struct {
	Level            string   `json:"jenjang" binding:"omitempty,max=50"`
	Phase            string   `json:"fase" binding:"required,fase"`
	Grade            string   `json:"kelas" binding:"required,max=10"`
	Subject          string   `json:"mata_pelajaran" binding:"omitempty,max=100"`
	MainTopic        string   `json:"materi_pokok" binding:"required,min=2,max=500"`
	TimeAllocation   string   `json:"alokasi_waktu" binding:"required,max=100"`
	LearningModel    string   `json:"model_pembelajaran" binding:"required,max=100"`
	PancasilaProfile []string `json:"profil_pelajar_pancasila" binding:"omitempty,dive,max=100"`
	TargetStudents   string   `json:"target_siswa" binding:"omitempty,max=200"`
}
