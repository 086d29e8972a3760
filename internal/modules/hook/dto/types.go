package dto

import "time"

type HookInfo struct {
	Name    string
	Version string
	Enabled bool
	Binary  string
	Events  []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	HandshakeOK     bool
	Error           string
}

type EventInput struct {
	Kind        string
	At          time.Time
	Level       int
	Message     string
	PayloadJSON string
}

type DispatchFailure struct {
	Hook  string
	Error string
}

type DispatchOutput struct {
	Delivered []string
	Failures  []DispatchFailure
}
