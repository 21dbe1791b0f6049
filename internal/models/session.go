// internal/models/session.go
package models

// SessionAttributeEmail is the session attribute the chat front end fills
// with the signed-in user's email. Session ids themselves are owned by the
// dialog engine and only echoed back.
const SessionAttributeEmail = "email"
