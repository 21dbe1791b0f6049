// internal/models/history.go
package models

// UserHistory keeps only the most recent completed search of a user.
type UserHistory struct {
	Email        string `json:"Email" dynamodbav:"Email" db:"email"`
	LastCuisine  string `json:"LastCuisine" dynamodbav:"LastCuisine" db:"last_cuisine"`
	LastLocation string `json:"LastLocation" dynamodbav:"LastLocation" db:"last_location"`
}
