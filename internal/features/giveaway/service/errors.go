package service

import "errors"

// Custom errors for the giveaway engine
var (
	ErrSessionNotFound = errors.New("giveaway session not found")
	ErrSessionExists   = errors.New("giveaway session already exists")
)
