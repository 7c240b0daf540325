package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/Dosada05/swiss-tournament/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

// memStore keeps the tables in memory and derives standings the way the
// database views do.
type memStore struct {
	mu            sync.Mutex
	nextID        int
	players       []*models.Player
	tournaments   []*models.Tournament
	registrations []*models.Registration
	matches       []*models.Match
	locks         []string
}

func newMemStore() *memStore {
	return &memStore{nextID: 1}
}

func (m *memStore) id() int {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memStore) addPlayer(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &models.Player{ID: m.id(), Name: name, CreatedAt: time.Now()}
	m.players = append(m.players, p)
	return p.ID
}

func (m *memStore) addTournament(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &models.Tournament{ID: m.id(), Name: name, CreatedAt: time.Now()}
	m.tournaments = append(m.tournaments, t)
	return t.ID
}

func (m *memStore) register(tournamentID int, playerIDs ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pid := range playerIDs {
		m.registrations = append(m.registrations, &models.Registration{TournamentID: tournamentID, PlayerID: pid})
	}
}

func (m *memStore) record(tournamentID *int, winner int, loser *int, draw bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches = append(m.matches, &models.Match{
		ID:           m.id(),
		TournamentID: tournamentID,
		WinnerID:     winner,
		LoserID:      loser,
		Draw:         draw,
		Bye:          loser == nil,
	})
}

func (m *memStore) matchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matches)
}

func (m *memStore) player(id int) *models.Player {
	for _, p := range m.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (m *memStore) tournament(id int) *models.Tournament {
	for _, t := range m.tournaments {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func sameScope(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m *memStore) standings(tournamentID *int) []*models.Standing {
	m.mu.Lock()
	defer m.mu.Unlock()

	byID := map[int]*models.Standing{}
	var order []*models.Standing
	add := func(p *models.Player) {
		st := &models.Standing{TournamentID: tournamentID, PlayerID: p.ID, Name: p.Name}
		byID[p.ID] = st
		order = append(order, st)
	}
	if tournamentID == nil {
		for _, p := range m.players {
			add(p)
		}
	} else {
		for _, r := range m.registrations {
			if r.TournamentID == *tournamentID {
				add(m.player(r.PlayerID))
			}
		}
	}

	var scoped []*models.Match
	for _, match := range m.matches {
		if tournamentID == nil || sameScope(tournamentID, match.TournamentID) {
			scoped = append(scoped, match)
		}
	}
	for _, match := range scoped {
		w := byID[match.WinnerID]
		if w != nil {
			w.Matches++
			switch {
			case match.Bye:
				w.Bye = true
			case match.Draw:
				w.Draws++
				w.Score += models.PointsDraw
			default:
				w.Wins++
				w.Score += models.PointsWin
			}
		}
		if match.LoserID != nil {
			if l := byID[*match.LoserID]; l != nil {
				l.Matches++
				if match.Draw {
					l.Draws++
					l.Score += models.PointsDraw
				} else {
					l.Losses++
				}
			}
		}
	}
	for _, match := range scoped {
		if match.LoserID == nil {
			continue
		}
		w, l := byID[match.WinnerID], byID[*match.LoserID]
		if w != nil && l != nil {
			w.OMS += l.Score
			l.OMS += w.Score
		}
	}

	slices.SortStableFunc(order, func(a, b *models.Standing) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return a.PlayerID - b.PlayerID
	})
	return order
}

// fakeTx emulates rollback by restoring the match log when fn fails.
type fakeTx struct {
	store     *memStore
	commits   int
	rollbacks int
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.store.mu.Lock()
	saved := slices.Clone(f.store.matches)
	f.store.mu.Unlock()

	if err := fn(nil); err != nil {
		f.store.mu.Lock()
		f.store.matches = saved
		f.store.mu.Unlock()
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

type fakePlayerRepo struct {
	store *memStore

	CountFunc func(ctx context.Context) (int, error)
}

func (r *fakePlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.Player) error {
	p.ID = r.store.addPlayer(p.Name)
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Player, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if p := r.store.player(id); p != nil {
		return p, nil
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) List(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Player, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return slices.Clone(r.store.players), nil
}

func (r *fakePlayerRepo) Count(ctx context.Context, exec repositories.SQLExecutor) (int, error) {
	if r.CountFunc != nil {
		return r.CountFunc(ctx)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.players), nil
}

func (r *fakePlayerRepo) DeleteAll(ctx context.Context, exec repositories.SQLExecutor) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n := int64(len(r.store.players))
	r.store.players, r.store.registrations, r.store.matches = nil, nil, nil
	return n, nil
}

type fakeTournamentRepo struct {
	store *memStore

	GetByIDFunc func(ctx context.Context, id int) (*models.Tournament, error)
}

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	t.ID = r.store.addTournament(t.Name)
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	if r.GetByIDFunc != nil {
		return r.GetByIDFunc(ctx, id)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t := r.store.tournament(id)
	if t == nil {
		return nil, repositories.ErrTournamentNotFound
	}
	out := *t
	for _, reg := range r.store.registrations {
		if reg.TournamentID == id {
			out.PlayerCount++
		}
	}
	return &out, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, exec repositories.SQLExecutor, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := slices.Clone(r.store.tournaments)
	if filter.Offset >= len(out) {
		return []*models.Tournament{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeTournamentRepo) DeleteAll(ctx context.Context, exec repositories.SQLExecutor) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n := int64(len(r.store.tournaments))
	r.store.tournaments = nil
	return n, nil
}

type fakeRegistrationRepo struct {
	store *memStore

	CountByTournamentFunc func(ctx context.Context, tournamentID int) (int, error)
}

func (r *fakeRegistrationRepo) Create(ctx context.Context, exec repositories.SQLExecutor, reg *models.Registration) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.tournament(reg.TournamentID) == nil {
		return repositories.ErrTournamentNotFound
	}
	if r.store.player(reg.PlayerID) == nil {
		return repositories.ErrPlayerNotFound
	}
	for _, existing := range r.store.registrations {
		if existing.TournamentID == reg.TournamentID && existing.PlayerID == reg.PlayerID {
			return repositories.ErrRegistrationConflict
		}
	}
	reg.CreatedAt = time.Now()
	r.store.registrations = append(r.store.registrations, reg)
	return nil
}

func (r *fakeRegistrationRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	if r.CountByTournamentFunc != nil {
		return r.CountByTournamentFunc(ctx, tournamentID)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n := 0
	for _, reg := range r.store.registrations {
		if reg.TournamentID == tournamentID {
			n++
		}
	}
	return n, nil
}

func (r *fakeRegistrationRepo) ListPlayers(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Player, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Player
	for _, reg := range r.store.registrations {
		if reg.TournamentID == tournamentID {
			out = append(out, r.store.player(reg.PlayerID))
		}
	}
	return out, nil
}

func (r *fakeRegistrationRepo) DeleteAll(ctx context.Context, exec repositories.SQLExecutor) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n := int64(len(r.store.registrations))
	r.store.registrations = nil
	return n, nil
}

type fakeMatchRepo struct {
	store *memStore

	CreateFunc func(ctx context.Context, match *models.Match) error
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, match)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.player(match.WinnerID) == nil || (match.LoserID != nil && r.store.player(*match.LoserID) == nil) {
		return repositories.ErrPlayerNotFound
	}
	if match.TournamentID != nil && r.store.tournament(*match.TournamentID) == nil {
		return repositories.ErrTournamentNotFound
	}
	match.ID = r.store.id()
	match.CreatedAt = time.Now()
	r.store.matches = append(r.store.matches, match)
	return nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID *int) ([]*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Match
	for _, match := range r.store.matches {
		if tournamentID == nil || sameScope(tournamentID, match.TournamentID) {
			out = append(out, match)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) DeleteAll(ctx context.Context, exec repositories.SQLExecutor) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n := int64(len(r.store.matches))
	r.store.matches = nil
	return n, nil
}

func (r *fakeMatchRepo) LockScope(ctx context.Context, exec repositories.SQLExecutor, tournamentID *int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.locks = append(r.store.locks, scopeAttr(tournamentID))
	return nil
}

type fakeStandingRepo struct {
	store *memStore

	calls int
}

func (r *fakeStandingRepo) List(ctx context.Context, exec repositories.SQLExecutor, tournamentID *int) ([]*models.Standing, error) {
	r.calls++
	return r.store.standings(tournamentID), nil
}

type published struct {
	tournamentID *int
	messageType  string
	payload      interface{}
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []published
}

func (p *fakePublisher) Publish(tournamentID *int, messageType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{tournamentID: tournamentID, messageType: messageType, payload: payload})
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.messages))
	for _, m := range p.messages {
		out = append(out, m.messageType)
	}
	return out
}

type fakeRecorder struct {
	matches map[string]int
	rounds  map[string]int
	byes    map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{matches: map[string]int{}, rounds: map[string]int{}, byes: map[string]int{}}
}

func (r *fakeRecorder) MatchRecorded(kind string)   { r.matches[kind]++ }
func (r *fakeRecorder) RoundGenerated(scope string) { r.rounds[scope]++ }
func (r *fakeRecorder) ByeAssigned(scope string)    { r.byes[scope]++ }

type fakeUploader struct {
	UploadFunc func(ctx context.Context, key string, contentType string, body []byte) (*storage.UploadResult, error)

	keys   []string
	bodies [][]byte
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, err
	}
	if u.UploadFunc != nil {
		return u.UploadFunc(ctx, key, contentType, buf.Bytes())
	}
	u.keys = append(u.keys, key)
	u.bodies = append(u.bodies, buf.Bytes())
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error { return nil }

func (u *fakeUploader) GetPublicURL(key string) string { return "https://cdn.test/" + key }

// fixture wires every service to one memStore.
type fixture struct {
	store       *memStore
	tx          *fakeTx
	players     *fakePlayerRepo
	tournaments *fakeTournamentRepo
	regs        *fakeRegistrationRepo
	matches     *fakeMatchRepo
	standings   *fakeStandingRepo
	publisher   *fakePublisher
	recorder    *fakeRecorder
	uploader    *fakeUploader
}

func newFixture() *fixture {
	store := newMemStore()
	return &fixture{
		store:       store,
		tx:          &fakeTx{store: store},
		players:     &fakePlayerRepo{store: store},
		tournaments: &fakeTournamentRepo{store: store},
		regs:        &fakeRegistrationRepo{store: store},
		matches:     &fakeMatchRepo{store: store},
		standings:   &fakeStandingRepo{store: store},
		publisher:   &fakePublisher{},
		recorder:    newFakeRecorder(),
		uploader:    &fakeUploader{},
	}
}

func (f *fixture) pairingService(avoidRematches bool) PairingService {
	return NewPairingService(PairingServiceDeps{
		Tx:               f.tx,
		PlayerRepo:       f.players,
		TournamentRepo:   f.tournaments,
		RegistrationRepo: f.regs,
		MatchRepo:        f.matches,
		StandingRepo:     f.standings,
		Archive:          NewArchiveService(f.uploader, discardLogger()),
		Publisher:        f.publisher,
		Metrics:          f.recorder,
		Logger:           discardLogger(),
		AvoidRematches:   avoidRematches,
	})
}

func (f *fixture) matchService() MatchService {
	return NewMatchService(f.matches, f.tournaments, f.publisher, f.recorder, discardLogger())
}

func (f *fixture) standingService() StandingService {
	return NewStandingService(f.standings, f.tournaments, discardLogger())
}

func (f *fixture) tournamentService() TournamentService {
	return NewTournamentService(f.tournaments, f.regs, f.standings, f.matches, discardLogger())
}

func (f *fixture) playerService() PlayerService {
	return NewPlayerService(f.players, discardLogger())
}

// tournamentWith creates a tournament with n registered players named p1..pn
// and returns the tournament id and the player ids in order.
func (f *fixture) tournamentWith(n int) (int, []int) {
	tid := f.store.addTournament("open")
	ids := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, f.store.addPlayer("p"+string(rune('0'+i))))
	}
	f.store.register(tid, ids...)
	return tid, ids
}
