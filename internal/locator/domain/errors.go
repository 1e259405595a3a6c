package domain

import "errors"

var (
	ErrKeyspaceNotFound = errors.New("keyspace not found")
	ErrKeyspaceExists   = errors.New("keyspace already exists")
	ErrStateNotFound    = errors.New("local node state not found")
)
