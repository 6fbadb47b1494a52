package service

import "github.com/carepoint/scheduling-api/internal/core/domain"

// noopMetrics is used until WithMetrics attaches a real recorder.
type noopMetrics struct{}

func (noopMetrics) BookingSucceeded()                           {}
func (noopMetrics) BookingRejected(string)                      {}
func (noopMetrics) StatusChanged(_, _ domain.AppointmentStatus) {}
func (noopMetrics) LoginAttempt(bool)                           {}
