// internal/flows/chatassist/models.go
package chatassist

type Input struct {
	Question  string `json:"question"`
	WishCount int    `json:"wishCount"`
}

type Output struct {
	Answer string `json:"answer"`
}
