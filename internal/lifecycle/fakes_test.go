package lifecycle

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"procurement/db"
	"procurement/models"

	"github.com/google/uuid"
)

// memStore - хранилище в памяти с той же семантикой ошибок, что и db.Storage
type memStore struct {
	mu         sync.Mutex
	rfps       map[uuid.UUID]*models.RFP
	vendors    map[uuid.UUID]*models.Vendor
	proposals  map[uuid.UUID]*models.Proposal
	links      map[[2]uuid.UUID]time.Time
	dispatches []models.Dispatch

	applyErr  error
	upsertErr error
}

func newMemStore() *memStore {
	return &memStore{
		rfps:      map[uuid.UUID]*models.RFP{},
		vendors:   map[uuid.UUID]*models.Vendor{},
		proposals: map[uuid.UUID]*models.Proposal{},
		links:     map[[2]uuid.UUID]time.Time{},
	}
}

func (s *memStore) CreateRFP(ctx context.Context, r *models.RFP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.CreatedAt, r.UpdatedAt = time.Now(), time.Now()
	c := *r
	s.rfps[r.ID] = &c
	return nil
}

func (s *memStore) GetRFP(ctx context.Context, id uuid.UUID) (*models.RFP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rfps[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (s *memStore) ListRFPs(ctx context.Context) ([]models.RFPSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.RFPSummary{}
	for _, r := range s.rfps {
		sum := models.RFPSummary{RFP: *r}
		for _, p := range s.proposals {
			if p.RFPID == r.ID {
				sum.Count.Proposals++
			}
		}
		for k := range s.links {
			if k[0] == r.ID {
				sum.Count.Vendors++
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *memStore) UpdateRFP(ctx context.Context, r *models.RFP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rfps[r.ID]; !ok {
		return db.ErrNotFound
	}
	c := *r
	s.rfps[r.ID] = &c
	return nil
}

func (s *memStore) UpdateRFPStatus(ctx context.Context, id uuid.UUID, status models.RFPStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rfps[id]
	if !ok {
		return db.ErrNotFound
	}
	r.Status = status
	return nil
}

func (s *memStore) DeleteRFP(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rfps[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.rfps, id)
	for pid, p := range s.proposals {
		if p.RFPID == id {
			delete(s.proposals, pid)
		}
	}
	for k := range s.links {
		if k[0] == id {
			delete(s.links, k)
		}
	}
	return nil
}

func (s *memStore) UpsertRFPVendor(ctx context.Context, rfpID, vendorID uuid.UUID, sentAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.links[[2]uuid.UUID{rfpID, vendorID}] = sentAt
	return nil
}

func (s *memStore) GetRFPVendors(ctx context.Context, rfpID uuid.UUID) ([]models.RFPVendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.RFPVendor{}
	for k, sentAt := range s.links {
		if k[0] == rfpID {
			out = append(out, models.RFPVendor{ID: uuid.New(), RFPID: k[0], VendorID: k[1], SentAt: sentAt, Vendor: *s.vendors[k[1]]})
		}
	}
	return out, nil
}

func (s *memStore) RecordDispatch(ctx context.Context, d *models.Dispatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatches = append(s.dispatches, *d)
	return nil
}

func (s *memStore) GetRFPDispatches(ctx context.Context, rfpID uuid.UUID) ([]models.Dispatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Dispatch{}
	for _, d := range s.dispatches {
		if d.RFPID == rfpID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *memStore) CreateVendor(ctx context.Context, v *models.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.vendors {
		if existing.Email == v.Email {
			return db.ErrDuplicate
		}
	}
	c := *v
	s.vendors[v.ID] = &c
	return nil
}

func (s *memStore) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vendors[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	c := *v
	return &c, nil
}

func (s *memStore) GetVendorsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Vendor{}
	for _, id := range ids {
		if v, ok := s.vendors[id]; ok {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) ListVendors(ctx context.Context) ([]models.VendorSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.VendorSummary{}
	for _, v := range s.vendors {
		out = append(out, models.VendorSummary{Vendor: *v})
	}
	return out, nil
}

func (s *memStore) UpdateVendor(ctx context.Context, v *models.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors[v.ID]; !ok {
		return db.ErrNotFound
	}
	for id, existing := range s.vendors {
		if id != v.ID && existing.Email == v.Email {
			return db.ErrDuplicate
		}
	}
	c := *v
	s.vendors[v.ID] = &c
	return nil
}

func (s *memStore) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.vendors, id)
	return nil
}

func (s *memStore) CreateProposal(ctx context.Context, p *models.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *p
	s.proposals[p.ID] = &c
	return nil
}

func (s *memStore) GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (s *memStore) GetProposalDetail(ctx context.Context, id uuid.UUID) (*models.ProposalDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	v := s.vendors[p.VendorID]
	r := s.rfps[p.RFPID]
	return &models.ProposalDetail{
		Proposal: *p,
		Vendor:   models.VendorRef{ID: v.ID, Name: v.Name, Email: v.Email, ContactPerson: v.ContactPerson},
		RFP:      models.RFPRef{ID: r.ID, Title: r.Title, Status: r.Status},
	}, nil
}

func (s *memStore) listProposals(rfpID uuid.UUID, keep func(*models.Proposal) bool) []models.ProposalWithVendor {
	out := []models.ProposalWithVendor{}
	for _, p := range s.proposals {
		if p.RFPID != rfpID || !keep(p) {
			continue
		}
		v := s.vendors[p.VendorID]
		out = append(out, models.ProposalWithVendor{
			Proposal: *p,
			Vendor:   models.VendorRef{ID: v.ID, Name: v.Name, Email: v.Email, ContactPerson: v.ContactPerson},
		})
	}
	return out
}

func (s *memStore) ListProposalsByRFP(ctx context.Context, rfpID uuid.UUID) ([]models.ProposalWithVendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.listProposals(rfpID, func(*models.Proposal) bool { return true })
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Score, out[j].Score
		if a == nil || b == nil {
			return a != nil
		}
		return *a > *b
	})
	return out, nil
}

func (s *memStore) ListComparableProposals(ctx context.Context, rfpID uuid.UUID) ([]models.ProposalWithVendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listProposals(rfpID, func(p *models.Proposal) bool { return p.Status.Comparable() }), nil
}

func (s *memStore) ListProposalsByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.VendorProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.VendorProposal{}
	for _, p := range s.proposals {
		if p.VendorID == vendorID {
			r := s.rfps[p.RFPID]
			out = append(out, models.VendorProposal{Proposal: *p, RFP: models.RFPRef{ID: r.ID, Title: r.Title, Status: r.Status}})
		}
	}
	return out, nil
}

func (s *memStore) UpdateProposalParse(ctx context.Context, id uuid.UUID, data *models.ProposalData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return db.ErrNotFound
	}
	p.ParsedData = data
	p.Status = models.ProposalStatusParsed
	p.Score = nil
	p.Evaluation = nil
	return nil
}

func (s *memStore) UpdateProposalStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return db.ErrNotFound
	}
	p.Status = status
	return nil
}

func (s *memStore) DeleteProposal(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.proposals, id)
	return nil
}

func (s *memStore) ApplyEvaluations(ctx context.Context, rfpID uuid.UUID, evals []models.ProposalEvaluation, status models.RFPStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applyErr != nil {
		return s.applyErr
	}
	for _, e := range evals {
		p := s.proposals[e.ProposalID]
		score := e.Evaluation.Score
		eval := e.Evaluation
		p.Score = &score
		p.Evaluation = &eval
		p.Status = models.ProposalStatusEvaluated
	}
	s.rfps[rfpID].Status = status
	return nil
}

// fakeAI возвращает заранее заданные ответы и считает вызовы
type fakeAI struct {
	mu        sync.Mutex
	structure *models.RFPStructure
	proposal  *models.ProposalData
	result    *models.ComparisonResult
	err       error
	calls     map[string]int
	scored    []models.ProposalWithVendor
	// onCall вызывается после каждого обращения, например для отмены контекста
	onCall func()
}

func (f *fakeAI) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
	if f.onCall != nil {
		f.onCall()
	}
}

func (f *fakeAI) StructureRequest(ctx context.Context, input string) (*models.RFPStructure, error) {
	f.record("structure")
	if f.err != nil {
		return nil, f.err
	}
	return f.structure, nil
}

func (f *fakeAI) ExtractProposal(ctx context.Context, rfp *models.RFP, email string) (*models.ProposalData, error) {
	f.record("extract")
	if f.err != nil {
		return nil, f.err
	}
	return f.proposal, nil
}

func (f *fakeAI) ScoreProposals(ctx context.Context, rfp *models.RFP, proposals []models.ProposalWithVendor) (*models.ComparisonResult, error) {
	f.record("score")
	f.scored = proposals
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeNotifier падает на адресах из failFor
type fakeNotifier struct {
	mu        sync.Mutex
	failFor   map[string]bool
	sent      []string
	verifyErr error
	afterSend func()
}

var errSMTP = errors.New("smtp: connection refused")

func (n *fakeNotifier) SendRFP(ctx context.Context, vendor models.Vendor, rfp *models.RFP) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[vendor.Email] {
		return "", errSMTP
	}
	n.sent = append(n.sent, vendor.Email)
	if n.afterSend != nil {
		n.afterSend()
	}
	return "<" + vendor.ID.String() + "@example.com>", nil
}

func (n *fakeNotifier) Verify(ctx context.Context) error { return n.verifyErr }
