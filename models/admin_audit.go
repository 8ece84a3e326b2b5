package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminAuditLog records one admin console mutation.
// Collection: admin_audit_logs
type AdminAuditLog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action       string             `bson:"action" json:"action"`
	CarID        string             `bson:"car_id,omitempty" json:"car_id,omitempty"`
	Actor        string             `bson:"actor" json:"actor"`
	RequestID    string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Success      bool               `bson:"success" json:"success"`
	ErrorMessage *string            `bson:"error_message,omitempty" json:"error_message,omitempty"`
	DurationMs   int64              `bson:"duration_ms" json:"duration_ms"`
	At           time.Time          `bson:"at" json:"at"`
}
