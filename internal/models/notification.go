// internal/models/notification.go
package models

const RecommendationSubject = "Your Dining Recommendations"

type Notification struct {
	ID        string `json:"id"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// Recommendation is one hydrated line of a notification body.
type Recommendation struct {
	RestaurantID string `json:"restaurantId"`
	Name         string `json:"name"`
	Address      string `json:"address"`
}
