package domain

// Question is one multiple-choice quiz item. CorrectOption and Explanation
// are server-side only until the question closes.
type Question struct {
	Id            string   `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
	Explanation   string   `json:"explanation"`
	Points        int      `json:"points"`
	Category      string   `json:"category,omitempty"`
}
