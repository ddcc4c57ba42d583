// internal/flows/siteassist/models.go
package siteassist

type Input struct {
	Question string `json:"question"`
}

type Output struct {
	Answer string `json:"answer"`
}
