package domain

import "time"

// OTPRecord is a pending one-time passcode for a contact email.
// The store keys records by contact email, so the email itself is not part of
// the persisted JSON value; the DynamoDB backend stores it as the partition key.
// ExpiresAt is a Unix timestamp, also used as DynamoDB TTL.
type OTPRecord struct {
	Email     string `json:"-" dynamodbav:"email"`
	Code      string `json:"otp" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
	RequestID string `json:"request_id" dynamodbav:"request_id"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`
}

// ExpiredAt reports whether the record's expiry has passed at the given time.
func (r *OTPRecord) ExpiredAt(now time.Time) bool {
	return r.ExpiresAt <= now.Unix()
}
