package memory

import (
	"context"
	"sort"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/internal/repositories"
)

// LedgerRepository implements repositories.LedgerRepository
type LedgerRepository struct {
	store *Store
}

func NewLedgerRepository(store *Store) repositories.LedgerRepository {
	return &LedgerRepository{store: store}
}

func (r *LedgerRepository) Get(ctx context.Context) (*models.Ledger, error) {
	var out *models.Ledger
	r.store.read(ctx, func(st *state) {
		if st.ledger != nil {
			l := *st.ledger
			out = &l
		}
	})
	if out == nil {
		return nil, repositories.ErrNotFound
	}
	return out, nil
}

func (r *LedgerRepository) Create(ctx context.Context, ledger *models.Ledger) error {
	return r.store.write(ctx, func(st *state) error {
		if st.ledger != nil {
			return repositories.ErrDuplicate
		}
		l := *ledger
		l.ID = models.LedgerID
		st.ledger = &l
		return nil
	})
}

func (r *LedgerRepository) Save(ctx context.Context, ledger *models.Ledger) error {
	return r.store.write(ctx, func(st *state) error {
		if st.ledger == nil {
			return repositories.ErrNotFound
		}
		l := *ledger
		l.ID = models.LedgerID
		st.ledger = &l
		return nil
	})
}

// ParticipantRepository implements repositories.ParticipantRepository
type ParticipantRepository struct {
	store *Store
}

func NewParticipantRepository(store *Store) repositories.ParticipantRepository {
	return &ParticipantRepository{store: store}
}

func (r *ParticipantRepository) FindByWallet(ctx context.Context, wallet string) (*models.Participant, error) {
	var out *models.Participant
	r.store.read(ctx, func(st *state) {
		if p, ok := st.participants[wallet]; ok {
			cp := *p
			out = &cp
		}
	})
	if out == nil {
		return nil, repositories.ErrNotFound
	}
	return out, nil
}

func (r *ParticipantRepository) Save(ctx context.Context, participant *models.Participant) error {
	return r.store.write(ctx, func(st *state) error {
		cp := *participant
		st.participants[cp.Wallet] = &cp
		return nil
	})
}

func (r *ParticipantRepository) FindEligible(ctx context.Context) ([]*models.Participant, error) {
	return r.find(ctx, func(p *models.Participant) bool { return p.IsEligible }), nil
}

func (r *ParticipantRepository) FindAll(ctx context.Context) ([]*models.Participant, error) {
	return r.find(ctx, func(*models.Participant) bool { return true }), nil
}

func (r *ParticipantRepository) find(ctx context.Context, match func(*models.Participant) bool) []*models.Participant {
	out := []*models.Participant{}
	r.store.read(ctx, func(st *state) {
		for _, p := range st.participants {
			if match(p) {
				cp := *p
				out = append(out, &cp)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Wallet < out[j].Wallet })
	return out
}

// DrawRepository implements repositories.DrawRepository
type DrawRepository struct {
	store *Store
}

func NewDrawRepository(store *Store) repositories.DrawRepository {
	return &DrawRepository{store: store}
}

func (r *DrawRepository) Create(ctx context.Context, draw *models.Draw) error {
	return r.store.write(ctx, func(st *state) error {
		key := models.DrawKey(draw.Cadence, draw.SequenceID)
		if _, exists := st.draws[key]; exists {
			return repositories.ErrDuplicate
		}
		cp := *draw
		cp.ID = key
		st.draws[key] = &cp
		return nil
	})
}

func (r *DrawRepository) Find(ctx context.Context, cadence models.Cadence, sequence uint32) (*models.Draw, error) {
	var out *models.Draw
	r.store.read(ctx, func(st *state) {
		if d, ok := st.draws[models.DrawKey(cadence, sequence)]; ok {
			cp := *d
			out = &cp
		}
	})
	if out == nil {
		return nil, repositories.ErrNotFound
	}
	return out, nil
}

func (r *DrawRepository) Update(ctx context.Context, draw *models.Draw) error {
	return r.store.write(ctx, func(st *state) error {
		key := models.DrawKey(draw.Cadence, draw.SequenceID)
		if _, exists := st.draws[key]; !exists {
			return repositories.ErrNotFound
		}
		cp := *draw
		cp.ID = key
		st.draws[key] = &cp
		return nil
	})
}

func (r *DrawRepository) FindByStatus(ctx context.Context, status models.DrawStatus) ([]*models.Draw, error) {
	out := []*models.Draw{}
	r.store.read(ctx, func(st *state) {
		for _, d := range st.draws {
			if d.Status == status {
				cp := *d
				out = append(out, &cp)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledTime.Equal(out[j].ScheduledTime) {
			return out[i].ScheduledTime.Before(out[j].ScheduledTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// EventRepository implements repositories.EventRepository
type EventRepository struct {
	store *Store
}

func NewEventRepository(store *Store) repositories.EventRepository {
	return &EventRepository{store: store}
}

func (r *EventRepository) Append(ctx context.Context, event *models.Event) error {
	return r.store.write(ctx, func(st *state) error {
		cp := *event
		cp.Data = copyData(event.Data)
		st.events = append(st.events, &cp)
		return nil
	})
}

// FindRecent returns up to limit events, newest first. A limit of zero or
// less returns every event.
func (r *EventRepository) FindRecent(ctx context.Context, limit int) ([]*models.Event, error) {
	out := []*models.Event{}
	r.store.read(ctx, func(st *state) {
		for i := len(st.events) - 1; i >= 0; i-- {
			if limit > 0 && len(out) == limit {
				break
			}
			cp := *st.events[i]
			cp.Data = copyData(cp.Data)
			out = append(out, &cp)
		}
	})
	return out, nil
}

func copyData(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
