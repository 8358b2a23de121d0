package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/tubot/internal/domain"
)

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given project (TUBOT_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, errors.New("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "creating firestore client")
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Ping reads a document that need not exist; only transport errors count.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.Collection("health").Doc("ping").Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return err
	}
	return nil
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) botsCol(userID domain.UserID) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(string(userID)).Collection("bots")
}

func (s *Store) accountDoc(email string) *firestore.DocumentRef {
	return s.client.Collection("accounts").Doc(domain.NormalizeEmail(email))
}

func (s *Store) profileDoc(userID domain.UserID) *firestore.DocumentRef {
	return s.client.Collection("profiles").Doc(string(userID))
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type botDoc struct {
	Name        string    `firestore:"name"`
	Personality string    `firestore:"personality"`
	Documents   []string  `firestore:"documents"`
	Color       string    `firestore:"color"`
	CreatedAt   time.Time `firestore:"created_at"`
}

type accountDoc struct {
	ID           string    `firestore:"id"`
	Username     string    `firestore:"username"`
	PasswordHash string    `firestore:"password_hash"`
	CreatedAt    time.Time `firestore:"created_at"`
}

type profileDoc struct {
	Username string `firestore:"username"`
	Email    string `firestore:"email"`
}

// ─────────────────────────────────────────
// BotStore implementation
// ─────────────────────────────────────────

func (s *Store) ListBots(ctx context.Context, userID domain.UserID) ([]domain.Bot, error) {
	iter := s.botsCol(userID).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	out := []domain.Bot{}
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, errors.Wrap(err, "firestore ListBots")
		}

		var doc botDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, errors.Wrap(err, "decode botDoc")
		}

		out = append(out, domain.Bot{
			ID:          domain.BotID(snap.Ref.ID),
			Name:        doc.Name,
			Personality: doc.Personality,
			Documents:   doc.Documents,
			Color:       domain.Color(doc.Color),
			CreatedAt:   doc.CreatedAt,
		}.Clone())
	}
	return out, nil
}

// SaveBot creates the bot document or merges the editable fields into it.
// created_at and color are only written on creation.
func (s *Store) SaveBot(ctx context.Context, userID domain.UserID, bot domain.Bot) error {
	ref := s.botsCol(userID).Doc(string(bot.ID))

	_, err := ref.Create(ctx, botDoc{
		Name:        bot.Name,
		Personality: bot.Personality,
		Documents:   bot.Clone().Documents,
		Color:       string(bot.Color),
		CreatedAt:   bot.CreatedAt,
	})
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.AlreadyExists {
		return errors.Wrap(err, "firestore SaveBot")
	}

	_, err = ref.Set(ctx, map[string]interface{}{
		"name":        bot.Name,
		"personality": bot.Personality,
		"documents":   bot.Clone().Documents,
	}, firestore.MergeAll)
	return errors.Wrap(err, "firestore SaveBot")
}

func (s *Store) DeleteBot(ctx context.Context, userID domain.UserID, id domain.BotID) error {
	_, err := s.botsCol(userID).Doc(string(id)).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return errors.Wrap(err, "firestore DeleteBot")
	}
	return nil
}

// ─────────────────────────────────────────
// AccountStore implementation
// ─────────────────────────────────────────

// CreateAccount keys accounts by email, so Create enforces uniqueness.
func (s *Store) CreateAccount(ctx context.Context, acc *domain.Account) error {
	_, err := s.accountDoc(acc.Email).Create(ctx, accountDoc{
		ID:           string(acc.ID),
		Username:     acc.Username,
		PasswordHash: acc.PasswordHash,
		CreatedAt:    acc.CreatedAt,
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return domain.ErrEmailTaken
		}
		return errors.Wrap(err, "firestore CreateAccount")
	}
	return nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	snap, err := s.accountDoc(email).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "firestore GetAccountByEmail")
	}

	var doc accountDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errors.Wrap(err, "firestore GetAccountByEmail decode")
	}

	return &domain.Account{
		ID:           domain.UserID(doc.ID),
		Email:        snap.Ref.ID,
		Username:     doc.Username,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

func (s *Store) GetProfile(ctx context.Context, userID domain.UserID) (*domain.Profile, error) {
	snap, err := s.profileDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "firestore GetProfile")
	}

	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errors.Wrap(err, "firestore GetProfile decode")
	}
	return &domain.Profile{UserID: userID, Username: doc.Username, Email: doc.Email}, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	_, err := s.profileDoc(p.UserID).Set(ctx, profileDoc{Username: p.Username, Email: p.Email})
	return errors.Wrap(err, "firestore UpsertProfile")
}
