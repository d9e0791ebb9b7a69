package model

// EditTitleRequest renames a document in the editor.
type EditTitleRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

// EditTextRequest replaces a free text field (prompt, explanation, modul).
type EditTextRequest struct {
	Text string `json:"text" binding:"max=50000"`
}

// EditOptionRequest changes the text of one option.
type EditOptionRequest struct {
	Key  string `json:"key" binding:"required,max=5"`
	Text string `json:"text" binding:"max=5000"`
}

// EditAnswerRequest sets the answer key. For multiple-choice questions it
// is an option key, for open-response questions the expected answer.
type EditAnswerRequest struct {
	Key string `json:"key" binding:"required,max=5000"`
}
