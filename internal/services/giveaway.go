// Package services implements the giveaway workflows: registration, the
// one-time draw, reporting and the admin reset.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"sorteo-ig/internal/db"
	"sorteo-ig/internal/models"
	"sorteo-ig/internal/validate"
)

// Store is the persistence gateway used by the workflows.
type Store interface {
	InsertParticipant(ctx context.Context, p models.Participant) (int64, error)
	ListParticipants(ctx context.Context) ([]models.Participant, error)
	GetParticipant(ctx context.Context, id int64) (models.Participant, error)
	CountParticipants(ctx context.Context) (int, error)
	DeleteAllParticipants(ctx context.Context) error
	InsertWinner(ctx context.Context, participantID int64, handle string) (int64, error)
	ListWinners(ctx context.Context, limit int) ([]models.Winner, error)
	WinnerExists(ctx context.Context) (bool, error)
	DeleteAllWinners(ctx context.Context) error
}

var _ Store = (*db.Store)(nil)

// minParticipants is the smallest pool a draw accepts.
const minParticipants = 2

// Registration is returned by a successful Register.
type Registration struct {
	Participant  models.Participant
	WhatsAppLink string
}

// Giveaway runs the workflows against a Store.
type Giveaway struct {
	store         Store
	adminPassword string
	timeout       time.Duration
	notifier      Notifier

	// pick returns an index in [0, n). Uniform by default.
	pick func(n int) int
}

// NewGiveaway creates a Giveaway. A nil notifier disables notices; a
// non-positive timeout falls back to ten seconds per store round trip.
func NewGiveaway(store Store, adminPassword string, timeout time.Duration, notifier Notifier) *Giveaway {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Giveaway{
		store:         store,
		adminPassword: adminPassword,
		timeout:       timeout,
		notifier:      notifier,
		pick:          rand.IntN,
	}
}

// DrawDone reports whether a winner is recorded in the store.
func (g *Giveaway) DrawDone(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done, err := g.store.WinnerExists(ctx)
	if err != nil {
		return false, storageError(err)
	}
	return done, nil
}

// Register validates and stores a new participant. Registration is refused
// once a winner exists.
func (g *Giveaway) Register(ctx context.Context, firstName, lastName, phone, handle, region string) (*Registration, error) {
	done, err := g.DrawDone(ctx)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, ErrRegistrationClosed
	}

	if !validate.AllPresent(firstName, lastName, phone, handle, region) {
		return nil, ErrMissingField
	}
	if !validate.Phone(phone) {
		return nil, ErrBadPhone
	}
	if !validate.Region(region) {
		return nil, ErrBadRegion
	}

	p := models.Participant{
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Handle:    strings.ToLower(handle),
		Region:    region,
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	id, err := g.store.InsertParticipant(ctx, p)
	if err != nil {
		var cerr *db.ConstraintError
		if errors.As(err, &cerr) {
			slog.Info("registration rejected", "constraint", cerr.Constraint, "handle", p.Handle)
			switch cerr.Constraint {
			case db.ConstraintPhone:
				return nil, ErrPhoneTaken
			case db.ConstraintHandle:
				return nil, ErrHandleTaken
			default:
				return nil, ErrConflictUnknown
			}
		}
		slog.Error("failed to insert participant", "error", err)
		return nil, storageError(err)
	}
	p.ID = id

	slog.Info("participant registered", "id", id, "handle", p.Handle, "region", p.Region)
	g.notifier.Notify(fmt.Sprintf("📝 Nuevo participante: %s %s (@%s) - %s", p.FirstName, p.LastName, p.Handle, p.Region))

	return &Registration{
		Participant:  p,
		WhatsAppLink: WhatsAppLink(p.Phone, p.FirstName),
	}, nil
}

// WhatsAppLink builds a wa.me deep link with the confirmation greeting.
func WhatsAppLink(phone, firstName string) string {
	msg := fmt.Sprintf("Hola %s! Tu participación en el sorteo fue registrada correctamente 🎉", firstName)
	// QueryEscape keeps & + = out of the value; spaces become %20, not +.
	return "https://wa.me/" + phone + "?text=" + strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
}

// checkCredential returns nil when credential is the admin password,
// ErrNotAttempted when it is empty and ErrBadCredential otherwise.
func (g *Giveaway) checkCredential(credential string) error {
	if credential == "" {
		return ErrNotAttempted
	}
	if subtle.ConstantTimeCompare([]byte(credential), []byte(g.adminPassword)) != 1 {
		return ErrBadCredential
	}
	return nil
}

// Draw picks the winner among all registered participants and records it.
// It succeeds at most once until the next Reset.
func (g *Giveaway) Draw(ctx context.Context, credential string) (models.Participant, error) {
	if err := g.checkCredential(credential); err != nil {
		return models.Participant{}, err
	}

	done, err := g.DrawDone(ctx)
	if err != nil {
		return models.Participant{}, err
	}
	if done {
		return models.Participant{}, ErrAlreadyDrawn
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	participants, err := g.store.ListParticipants(ctx)
	if err != nil {
		return models.Participant{}, storageError(err)
	}
	if len(participants) < minParticipants {
		return models.Participant{}, ErrNotEnoughParticipants
	}

	winner := participants[g.pick(len(participants))]

	// Another admin may have drawn since the check above; the store keeps a
	// single winner slot, so the loser of that race lands here.
	if _, err := g.store.InsertWinner(ctx, winner.ID, winner.Handle); err != nil {
		if errors.Is(err, db.ErrWinnerExists) {
			return models.Participant{}, ErrAlreadyDrawn
		}
		return models.Participant{}, storageError(err)
	}

	slog.Info("winner drawn", "participant_id", winner.ID, "handle", winner.Handle, "pool", len(participants))
	g.notifier.Notify(fmt.Sprintf("🏆 Ganador/a del sorteo: %s %s (@%s) - %s", winner.FirstName, winner.LastName, winner.Handle, winner.Region))

	return winner, nil
}

// Reset deletes every winner and participant, reopening registration.
// The two deletions are not atomic.
func (g *Giveaway) Reset(ctx context.Context, credential string) error {
	if err := g.checkCredential(credential); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.store.DeleteAllWinners(ctx); err != nil {
		return storageError(err)
	}
	if err := g.store.DeleteAllParticipants(ctx); err != nil {
		return storageError(err)
	}

	slog.Warn("giveaway reset, all records deleted")
	g.notifier.Notify("🗑️ Base de datos reiniciada. El registro está abierto nuevamente.")
	return nil
}
