package models

import (
	"time"

	"github.com/google/uuid"
)

type RFPStatus string

const (
	RFPStatusDraft      RFPStatus = "DRAFT"
	RFPStatusSent       RFPStatus = "SENT"
	RFPStatusEvaluating RFPStatus = "EVALUATING"
	RFPStatusAwarded    RFPStatus = "AWARDED"
	RFPStatusClosed     RFPStatus = "CLOSED"
)

// Порядок стадий RFP, используется для проверки перехода только вперёд
var rfpStage = map[RFPStatus]int{
	RFPStatusDraft:      0,
	RFPStatusSent:       1,
	RFPStatusEvaluating: 2,
	RFPStatusAwarded:    3,
	RFPStatusClosed:     3,
}

func (s RFPStatus) Valid() bool {
	_, ok := rfpStage[s]
	return ok
}

// Terminal - AWARDED и CLOSED, из них переходов нет
func (s RFPStatus) Terminal() bool {
	return s == RFPStatusAwarded || s == RFPStatusClosed
}

// Stage возвращает порядковый номер стадии (-1 для неизвестного статуса)
func (s RFPStatus) Stage() int {
	if st, ok := rfpStage[s]; ok {
		return st
	}
	return -1
}

type ProposalStatus string

const (
	ProposalStatusReceived  ProposalStatus = "RECEIVED"
	ProposalStatusParsed    ProposalStatus = "PARSED"
	ProposalStatusEvaluated ProposalStatus = "EVALUATED"
	ProposalStatusSelected  ProposalStatus = "SELECTED"
	ProposalStatusRejected  ProposalStatus = "REJECTED"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalStatusReceived, ProposalStatusParsed, ProposalStatusEvaluated,
		ProposalStatusSelected, ProposalStatusRejected:
		return true
	}
	return false
}

// Comparable - статусы предложений, участвующих в сравнении
func (s ProposalStatus) Comparable() bool {
	return s == ProposalStatusParsed || s == ProposalStatusEvaluated
}

// Позиция RFP
type RFPItem struct {
	Name           string         `json:"name"`
	Quantity       float64        `json:"quantity"`
	Specifications map[string]any `json:"specifications"`
}

type Budget struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Timeline struct {
	DeliveryDeadline string `json:"deliveryDeadline"`
	ResponseDeadline string `json:"responseDeadline"`
}

type Terms struct {
	PaymentTerms string `json:"paymentTerms"`
	Warranty     string `json:"warranty"`
}

// RFPStructure - структурированный запрос, полученный от модели
type RFPStructure struct {
	Title        string    `json:"title"`
	Items        []RFPItem `json:"items"`
	Budget       Budget    `json:"budget"`
	Timeline     Timeline  `json:"timeline"`
	Terms        Terms     `json:"terms"`
	Requirements []string  `json:"requirements"`
}

// Сущность RFP
type RFP struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	RawInput     string     `db:"raw_input" json:"rawInput"`
	Status       RFPStatus  `db:"status" json:"status"`
	Items        RFPItems   `db:"items" json:"items"`
	Budget       Budget     `db:"budget" json:"budget"`
	Timeline     Timeline   `db:"timeline" json:"timeline"`
	Terms        Terms      `db:"terms" json:"terms"`
	Requirements StringList `db:"requirements" json:"requirements"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// RFPPatch - частичное обновление полей RFP (PUT /rfps/{id})
type RFPPatch struct {
	Title        *string    `json:"title"`
	Items        *[]RFPItem `json:"items"`
	Budget       *Budget    `json:"budget"`
	Timeline     *Timeline  `json:"timeline"`
	Terms        *Terms     `json:"terms"`
	Requirements *[]string  `json:"requirements"`
}

func (p RFPPatch) Apply(r *RFP) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Items != nil {
		r.Items = *p.Items
	}
	if p.Budget != nil {
		r.Budget = *p.Budget
	}
	if p.Timeline != nil {
		r.Timeline = *p.Timeline
	}
	if p.Terms != nil {
		r.Terms = *p.Terms
	}
	if p.Requirements != nil {
		r.Requirements = *p.Requirements
	}
}

type RFPCounts struct {
	Proposals int `db:"proposals" json:"proposals"`
	Vendors   int `db:"vendors" json:"vendors"`
}

// RFPSummary - элемент списка RFP со счётчиками
type RFPSummary struct {
	RFP
	Count RFPCounts `db:"count" json:"_count"`
}

// Сущность Поставщика
type Vendor struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	ContactPerson string    `db:"contact_person" json:"contactPerson"`
	Phone         *string   `db:"phone" json:"phone,omitempty"`
	Category      *string   `db:"category" json:"category,omitempty"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

type VendorCounts struct {
	Proposals int `db:"proposals" json:"proposals"`
}

type VendorSummary struct {
	Vendor
	Count VendorCounts `db:"count" json:"_count"`
}

// VendorPatch - частичное обновление поставщика
type VendorPatch struct {
	Name          *string   `json:"name"`
	Email         *string   `json:"email"`
	ContactPerson *string   `json:"contactPerson"`
	Phone         *string   `json:"phone"`
	Category      *Category `json:"category"`
	Notes         *string   `json:"notes"`
}

func (p VendorPatch) Apply(v *Vendor) {
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.Email != nil {
		v.Email = *p.Email
	}
	if p.ContactPerson != nil {
		v.ContactPerson = *p.ContactPerson
	}
	if p.Phone != nil {
		v.Phone = p.Phone
	}
	if p.Category != nil {
		v.Category = p.Category.Ptr()
	}
	if p.Notes != nil {
		v.Notes = p.Notes
	}
}

// Краткие сведения о поставщике для вложенных ответов
type VendorRef struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	ContactPerson string    `db:"contact_person" json:"contactPerson"`
}

type RFPRef struct {
	ID     uuid.UUID `db:"id" json:"id"`
	Title  string    `db:"title" json:"title"`
	Status RFPStatus `db:"status" json:"status"`
}

// Связь RFP - поставщик (кому и когда отправлен запрос)
type RFPVendor struct {
	ID       uuid.UUID `db:"id" json:"id"`
	RFPID    uuid.UUID `db:"rfp_id" json:"rfpId"`
	VendorID uuid.UUID `db:"vendor_id" json:"vendorId"`
	SentAt   time.Time `db:"sent_at" json:"sentAt"`
	Vendor   Vendor    `db:"vendor" json:"vendor"`
}

// Журнал попыток отправки RFP
type Dispatch struct {
	ID          uuid.UUID `db:"id" json:"id"`
	RFPID       uuid.UUID `db:"rfp_id" json:"rfpId"`
	VendorID    uuid.UUID `db:"vendor_id" json:"vendorId"`
	Success     bool      `db:"success" json:"success"`
	MessageID   *string   `db:"message_id" json:"messageId,omitempty"`
	Error       *string   `db:"error" json:"error,omitempty"`
	AttemptedAt time.Time `db:"attempted_at" json:"attemptedAt"`
}

type ProposalItem struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
	MeetsSpecs bool    `json:"meetsSpecs"`
}

// ProposalData - структурированное предложение, извлечённое из письма
type ProposalData struct {
	Items           []ProposalItem `json:"items"`
	TotalPrice      float64        `json:"totalPrice"`
	Currency        string         `json:"currency"`
	DeliveryTime    string         `json:"deliveryTime"`
	PaymentTerms    string         `json:"paymentTerms"`
	Warranty        string         `json:"warranty"`
	AdditionalNotes []string       `json:"additionalNotes"`
	Confidence      float64        `json:"confidence"`
}

type Evaluation struct {
	Score           float64  `json:"score"`
	PriceScore      float64  `json:"priceScore"`
	DeliveryScore   float64  `json:"deliveryScore"`
	ComplianceScore float64  `json:"complianceScore"`
	TermsScore      float64  `json:"termsScore"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
}

// Сущность Предложения
type Proposal struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	RFPID        uuid.UUID      `db:"rfp_id" json:"rfpId"`
	VendorID     uuid.UUID      `db:"vendor_id" json:"vendorId"`
	RawEmail     string         `db:"raw_email" json:"rawEmail"`
	EmailSubject *string        `db:"email_subject" json:"emailSubject,omitempty"`
	ParsedData   *ProposalData  `db:"parsed_data" json:"parsedData,omitempty"`
	Score        *float64       `db:"score" json:"score,omitempty"`
	Evaluation   *Evaluation    `db:"evaluation" json:"evaluation,omitempty"`
	Status       ProposalStatus `db:"status" json:"status"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`
}

type ProposalWithVendor struct {
	Proposal
	Vendor VendorRef `db:"vendor" json:"vendor"`
}

// ProposalDetail - предложение вместе с поставщиком и RFP
type ProposalDetail struct {
	Proposal
	Vendor VendorRef `db:"vendor" json:"vendor"`
	RFP    RFPRef    `db:"rfp" json:"rfp"`
}

type VendorProposal struct {
	Proposal
	RFP RFPRef `db:"rfp" json:"rfp"`
}

// ProposalEvaluation - результат оценки одного предложения для записи в БД
type ProposalEvaluation struct {
	ProposalID uuid.UUID
	Evaluation Evaluation
}

type RFPDetail struct {
	RFP
	Vendors    []RFPVendor          `json:"vendors"`
	Proposals  []ProposalWithVendor `json:"proposals"`
	Dispatches []Dispatch           `json:"dispatches"`
}

type VendorDetail struct {
	Vendor
	Proposals []VendorProposal `json:"proposals"`
}

type Ranking struct {
	VendorID        string   `json:"vendorId"`
	VendorName      string   `json:"vendorName"`
	Score           float64  `json:"score"`
	PriceScore      float64  `json:"priceScore"`
	DeliveryScore   float64  `json:"deliveryScore"`
	ComplianceScore float64  `json:"complianceScore"`
	TermsScore      float64  `json:"termsScore"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
}

func (r Ranking) Evaluation() Evaluation {
	return Evaluation{
		Score:           r.Score,
		PriceScore:      r.PriceScore,
		DeliveryScore:   r.DeliveryScore,
		ComplianceScore: r.ComplianceScore,
		TermsScore:      r.TermsScore,
		Strengths:       r.Strengths,
		Weaknesses:      r.Weaknesses,
	}
}

type Recommendation struct {
	VendorID   string `json:"vendorId"`
	VendorName string `json:"vendorName"`
	Reasoning  string `json:"reasoning"`
}

type ComparisonResult struct {
	Rankings       []Ranking      `json:"rankings"`
	Recommendation Recommendation `json:"recommendation"`
	Summary        string         `json:"summary"`
}

// Результат отправки RFP одному поставщику
type DispatchResult struct {
	VendorID   uuid.UUID `json:"vendorId"`
	VendorName string    `json:"vendor"`
	Email      string    `json:"email"`
	Success    bool      `json:"success"`
	MessageID  string    `json:"messageId,omitempty"`
	Error      string    `json:"error,omitempty"`
}

type DispatchReport struct {
	Message      string           `json:"message"`
	SuccessCount int              `json:"successCount"`
	FailureCount int              `json:"failureCount"`
	Results      []DispatchResult `json:"results"`
}
