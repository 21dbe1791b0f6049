// internal/models/restaurant.go
package models

const RestaurantDocumentType = "Restaurant"

// RestaurantIndexEntry is the search index document for a restaurant.
type RestaurantIndexEntry struct {
	RestaurantID string `json:"RestaurantID"`
	Cuisine      string `json:"Cuisine"`
	Type         string `json:"type"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude" dynamodbav:"latitude"`
	Longitude float64 `json:"longitude" dynamodbav:"longitude"`
}

// Restaurant is the record store item, written only by the ingestion job.
type Restaurant struct {
	BusinessID          string      `json:"businessId" dynamodbav:"Business ID" db:"business_id"`
	Name                string      `json:"name" dynamodbav:"Name" db:"name"`
	Address             string      `json:"address" dynamodbav:"Address" db:"address"`
	Coordinates         Coordinates `json:"coordinates" dynamodbav:"Coordinates"`
	ReviewCount         int         `json:"reviewCount" dynamodbav:"Number of Reviews" db:"review_count"`
	Rating              float64     `json:"rating" dynamodbav:"Rating" db:"rating"`
	ZipCode             string      `json:"zipCode" dynamodbav:"Zip Code" db:"zip_code"`
	InsertedAtTimestamp string      `json:"insertedAtTimestamp" dynamodbav:"insertedAtTimestamp" db:"inserted_at"`
}

// DisplayName falls back to a placeholder for records ingested without a name.
func (r *Restaurant) DisplayName() string {
	if r.Name == "" {
		return "Unknown Name"
	}
	return r.Name
}

func (r *Restaurant) DisplayAddress() string {
	if r.Address == "" {
		return "Unknown Address"
	}
	return r.Address
}
