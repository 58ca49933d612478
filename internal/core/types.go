// Package core implements the pricebook bulk synchronization engine: header
// resolution, row validation, cross-sheet reconciliation, the transactional
// apply step and the export projection. The package has no transport or file
// format dependencies; workbooks come in through a narrow source interface
// and persistence goes out through repository interfaces.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Action is the per-row instruction of the products sheet.
type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
	ActionArchive Action = "ARCHIVE"
)

// ParseAction matches the action vocabulary case-insensitively.
func ParseAction(s string) (Action, bool) {
	switch Action(strings.ToUpper(strings.TrimSpace(s))) {
	case ActionCreate:
		return ActionCreate, true
	case ActionUpdate:
		return ActionUpdate, true
	case ActionDelete:
		return ActionDelete, true
	case ActionArchive:
		return ActionArchive, true
	}
	return "", false
}

// IsDelete reports whether the action targets the archive path.
// DELETE and ARCHIVE are synonyms in this engine.
func (a Action) IsDelete() bool {
	return a == ActionDelete || a == ActionArchive
}

// OptDecimal is an optional decimal cell value.
type OptDecimal struct {
	Decimal decimal.Decimal
	Valid   bool
}

// Dec wraps a decimal into a present OptDecimal.
func Dec(d decimal.Decimal) OptDecimal {
	return OptDecimal{Decimal: d, Valid: true}
}

// OptBool is an optional boolean cell value.
type OptBool struct {
	Bool  bool
	Valid bool
}

// OptInt is an optional integer cell value.
type OptInt struct {
	Int64 int64
	Valid bool
}

// ValueKind discriminates the attribute value union.
type ValueKind int8

const (
	ValueNumber ValueKind = iota + 1
	ValueText
)

func (k ValueKind) String() string {
	switch k {
	case ValueNumber:
		return "number"
	case ValueText:
		return "text"
	}
	return "unknown"
}

// AttributeValue is a tagged union: exactly one of the Number/Text slots is
// meaningful, selected by Kind. It is never "both" and never "neither".
type AttributeValue struct {
	Kind   ValueKind
	Number decimal.Decimal // set when Kind == ValueNumber
	Text   string          // set when Kind == ValueText
}

// NumberValue builds a numeric attribute value.
func NumberValue(d decimal.Decimal) AttributeValue {
	return AttributeValue{Kind: ValueNumber, Number: d}
}

// TextValue builds a textual attribute value.
func TextValue(s string) AttributeValue {
	return AttributeValue{Kind: ValueText, Text: s}
}

// WorkKind tags products that represent installation work.
type WorkKind string

const (
	WorkKindNone               WorkKind = ""
	WorkKindInstallationLinked WorkKind = "installation_linked"
)

// RelationType is the type of a directed product relation edge.
type RelationType string

const (
	RelationRelated          RelationType = "RELATED"
	RelationInstallationWork RelationType = "INSTALLATION_WORK"
)

// Prices groups the operational price fields of a product payload.
// Price is the only mandatory one.
type Prices struct {
	Price        decimal.Decimal
	Sale         OptDecimal
	Vendor       OptDecimal
	VendorMin    OptDecimal
	Zakup        OptDecimal
	Delivery     OptDecimal
	Montaj       OptDecimal
	MontajSebest OptDecimal
}

// ProductPayload is a fully validated, normalized product ready to persist.
type ProductPayload struct {
	Row    int // products sheet row the payload came from
	Action Action
	SCU    string
	Name   string

	ProductTypeID int64
	ProductKindID int64
	UnitID        int64
	CategoryID    int64
	SubcategoryID OptInt
	BrandID       OptInt

	IsVisible bool
	IsTop     bool
	IsNew     bool

	Prices Prices

	WorkKind WorkKind
}

// WorkLink is a "link only" installation-work request: the parent row named
// a work SCU without detail fields, so an existing product gets wired in
// instead of synthesizing a sibling.
type WorkLink struct {
	Row          int
	WorkSCU      string
	MontajSebest OptDecimal // pushed onto the linked product's pricing record
}

// NewDefinition is an attribute definition queued for creation because an
// import row referenced a name with no existing match.
type NewDefinition struct {
	Name      string // original (trimmed) spelling from the sheet
	NormName  string
	KindID    OptInt // product kind scope
	ValueKind ValueKind
}

// AttrValue binds an attribute value to either an existing definition or a
// queued new one.
type AttrValue struct {
	DefID  int64 // >0 when bound to an existing definition
	NewDef int   // index into ChangeSet.NewDefs when DefID == 0
	Value  AttributeValue
}

// StoredAttributeValue is an attribute value with its definition resolved to
// a storage id, ready for the snapshot replace.
type StoredAttributeValue struct {
	DefinitionID int64
	Value        AttributeValue
}

// RelationEdge is one typed edge written during the relation rebuild.
type RelationEdge struct {
	RelatedID int64
	Type      RelationType
}

// ChangeSet is the in-memory result of reconciliation, validated in full
// before any persistence happens.
type ChangeSet struct {
	Products []*ProductPayload          // surviving parent payloads, sheet order
	Deletes  map[string]int             // delete-target SCU -> sheet row
	Works    map[string]*ProductPayload // parent SCU -> synthesized sibling
	Links    map[string]WorkLink        // parent SCU -> link-only request

	Descriptions map[string]DescriptionRow
	Attributes   map[string][]AttrValue
	NewDefs      []NewDefinition
	Media        map[string][]MediaRow
	Relations    map[string][]string // parent SCU -> related SCUs

	bySCU map[string]*ProductPayload
}

// NewChangeSet allocates an empty change set.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{
		Deletes:      make(map[string]int),
		Works:        make(map[string]*ProductPayload),
		Links:        make(map[string]WorkLink),
		Descriptions: make(map[string]DescriptionRow),
		Attributes:   make(map[string][]AttrValue),
		Media:        make(map[string][]MediaRow),
		Relations:    make(map[string][]string),
		bySCU:        make(map[string]*ProductPayload),
	}
}

// Product returns the surviving parent payload for a SCU, if any.
func (cs *ChangeSet) Product(scu string) (*ProductPayload, bool) {
	p, ok := cs.bySCU[scu]
	return p, ok
}

// InBatch reports whether the SCU is produced by this batch, either as a
// parent payload or a synthesized work sibling.
func (cs *ChangeSet) InBatch(scu string) bool {
	if _, ok := cs.bySCU[scu]; ok {
		return true
	}
	for _, w := range cs.Works {
		if w.SCU == scu {
			return true
		}
	}
	return false
}

// workBySCU returns the synthesized sibling with the given SCU, if any.
func (cs *ChangeSet) workBySCU(scu string) (*ProductPayload, bool) {
	for _, w := range cs.Works {
		if w.SCU == scu {
			return w, true
		}
	}
	return nil, false
}

// Summary is the result of one import call. Non-empty Errors means nothing
// was written.
type Summary struct {
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Archived int      `json:"archived"`
	Errors   []string `json:"errors"`
}

// ExistingProduct is the stored-catalog view the resolver loads per SCU.
type ExistingProduct struct {
	ID       int64
	SCU      string
	IsGlobal bool
	Archived bool
	WorkKind WorkKind
}

// AttributeDef is a stored attribute definition.
type AttributeDef struct {
	ID        int64
	Name      string
	KindID    OptInt // product kind scope; invalid = unscoped
	ValueKind ValueKind
}
