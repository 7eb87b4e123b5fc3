package events

import (
	"fmt"

	"bookvideolink/internal/metrics"

	"github.com/rs/zerolog"
)

// RegisterBookingSubscribers wires the metrics counter and the audit log to every booking event.
func RegisterBookingSubscribers(bus *EventBus, audit *zerolog.Logger) {
	for _, eventType := range BookingEvents {
		bus.Subscribe(eventType, countBooking)
		bus.Subscribe(eventType, auditBooking(audit))
	}
}

func countBooking(event *Event) error {
	p, err := event.DecodeBooking()
	if err != nil {
		return fmt.Errorf("decode %s: %w", event.Type, err)
	}
	metrics.IncBooking(event.Type, string(p.BookingType))
	return nil
}

func auditBooking(audit *zerolog.Logger) EventHandler {
	return func(event *Event) error {
		p, err := event.DecodeBooking()
		if err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		audit.Info().
			Str("event", event.Type).
			Int64("booking_id", p.BookingID).
			Str("booking_type", string(p.BookingType)).
			Str("agency_code", p.AgencyCode).
			Str("prison_code", p.PrisonCode).
			Str("prisoner_number", p.PrisonerNumber).
			Str("date", p.Date).
			Str("start_time", p.StartTime).
			Str("changed_by", p.ChangedBy).
			Time("at", event.CreatedAt).
			Msg("booking event")
		return nil
	}
}
