// Package diddoc is the typed view over a DID Document's JSON form: typed,
// upsert-capable verification-relationship arrays in place of ad hoc
// map[string]interface{} walking.
package diddoc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dc4eu/didengine/pkg/jose"
	"github.com/dc4eu/didengine/pkg/model"
)

// Relation names one of the six verification relationship arrays, walked in
// this fixed order whenever a method must be located regardless of which
// relationship holds it.
type Relation string

const (
	RelationVerificationMethod   Relation = "verificationMethod"
	RelationAuthentication       Relation = "authentication"
	RelationAssertionMethod      Relation = "assertionMethod"
	RelationKeyAgreement         Relation = "keyAgreement"
	RelationCapabilityInvocation Relation = "capabilityInvocation"
	RelationCapabilityDelegation Relation = "capabilityDelegation"
)

// RelationOrder is the fixed iteration order used by AllMethods.
var RelationOrder = []Relation{
	RelationVerificationMethod,
	RelationAuthentication,
	RelationAssertionMethod,
	RelationKeyAgreement,
	RelationCapabilityInvocation,
	RelationCapabilityDelegation,
}

// VerificationMethod is a JsonWebKey-typed Ed25519 verification method.
type VerificationMethod struct {
	ID           string   `json:"id"`
	Controller   string   `json:"controller"`
	Type         string   `json:"type"`
	PublicKeyJWK *jose.JWK `json:"publicKeyJwk,omitempty"`
}

// RelationshipEntry is either a bare method-id reference or an embedded
// VerificationMethod, matching the two forms the DID Core data model allows
// inside a verification relationship array.
type RelationshipEntry struct {
	id     string
	method *VerificationMethod
}

// NewMethodEntry wraps an embedded VerificationMethod as a RelationshipEntry.
func NewMethodEntry(m VerificationMethod) RelationshipEntry {
	return RelationshipEntry{method: &m}
}

// NewReferenceEntry wraps a bare method-id reference as a RelationshipEntry.
func NewReferenceEntry(id string) RelationshipEntry {
	return RelationshipEntry{id: id}
}

// ID returns the method id regardless of which form this entry holds.
func (r RelationshipEntry) ID() string {
	if r.method != nil {
		return r.method.ID
	}
	return r.id
}

// Method returns the embedded VerificationMethod, or nil if this entry is a
// bare reference.
func (r RelationshipEntry) Method() *VerificationMethod {
	return r.method
}

// MarshalJSON renders a bare reference as a JSON string and an embedded
// method as a JSON object.
func (r RelationshipEntry) MarshalJSON() ([]byte, error) {
	if r.method != nil {
		return json.Marshal(r.method)
	}
	return json.Marshal(r.id)
}

// UnmarshalJSON accepts either a JSON string (reference) or object (embedded
// method).
func (r *RelationshipEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.id = s
		r.method = nil
		return nil
	}
	var m VerificationMethod
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	r.method = &m
	r.id = ""
	return nil
}

// ServiceType holds a service's "type" field, which DID Core allows to be
// either a single string or an array of strings.
type ServiceType []string

// MarshalJSON renders a single-element ServiceType as a bare string and a
// multi-element one as a JSON array, matching common DID Document usage.
func (t ServiceType) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// UnmarshalJSON accepts either a JSON string or a JSON array of strings.
func (t *ServiceType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = ServiceType{s}
		return nil
	}
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	*t = ServiceType(arr)
	return nil
}

// First returns the first declared type, or "" if none.
func (t ServiceType) First() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Service is one entry of a DID Document's service array.
type Service struct {
	ID              string      `json:"id"`
	Type            ServiceType `json:"type"`
	ServiceEndpoint string      `json:"serviceEndpoint"`
}

// Document is the typed view over a DID Document's JSON form.
type Document struct {
	ID                   string               `json:"id"`
	VerificationMethod   []RelationshipEntry  `json:"verificationMethod,omitempty"`
	Authentication       []RelationshipEntry  `json:"authentication,omitempty"`
	AssertionMethod      []RelationshipEntry  `json:"assertionMethod,omitempty"`
	KeyAgreement         []RelationshipEntry  `json:"keyAgreement,omitempty"`
	CapabilityInvocation []RelationshipEntry  `json:"capabilityInvocation,omitempty"`
	CapabilityDelegation []RelationshipEntry  `json:"capabilityDelegation,omitempty"`
	Service              []Service            `json:"service,omitempty"`
}

// relationSlice returns a pointer to the slice field backing relation, so
// callers can read or mutate it uniformly.
func (d *Document) relationSlice(relation Relation) (*[]RelationshipEntry, error) {
	switch relation {
	case RelationVerificationMethod:
		return &d.VerificationMethod, nil
	case RelationAuthentication:
		return &d.Authentication, nil
	case RelationAssertionMethod:
		return &d.AssertionMethod, nil
	case RelationKeyAgreement:
		return &d.KeyAgreement, nil
	case RelationCapabilityInvocation:
		return &d.CapabilityInvocation, nil
	case RelationCapabilityDelegation:
		return &d.CapabilityDelegation, nil
	default:
		return nil, model.WrapOp("diddocRelation", model.ErrInvalidArgument, fmt.Errorf("unknown verification relationship %q", relation))
	}
}

// MethodRef names a single entry found while walking AllMethods.
type MethodRef struct {
	Relation Relation
	Position int
	Entry    RelationshipEntry
}

// AllMethods produces the ordered sequence of every entry across the six
// verification relationships, in RelationOrder, so a method can be located
// by fully-qualified id regardless of which relationship holds it.
func (d *Document) AllMethods() []MethodRef {
	var out []MethodRef
	for _, relation := range RelationOrder {
		slice, _ := d.relationSlice(relation)
		for i, entry := range *slice {
			out = append(out, MethodRef{Relation: relation, Position: i, Entry: entry})
		}
	}
	return out
}

// FindMethodByID returns the first entry across all relationships whose id
// matches methodID.
func (d *Document) FindMethodByID(methodID string) (*MethodRef, bool) {
	for _, ref := range d.AllMethods() {
		if ref.Entry.ID() == methodID {
			ref := ref
			return &ref, true
		}
	}
	return nil, false
}

// AddMethod upserts method into relation: if a method with the same id
// already exists anywhere across the six relationships, it is removed from
// whichever relationship array holds it, then the new entry is appended to
// relation. This implements an idempotent upsert keyed on method id.
func (d *Document) AddMethod(relation Relation, method VerificationMethod) error {
	target, err := d.relationSlice(relation)
	if err != nil {
		return err
	}

	for _, r := range RelationOrder {
		slice, _ := d.relationSlice(r)
		*slice = removeByID(*slice, method.ID)
	}

	*target = append(*target, NewMethodEntry(method))
	return nil
}

// RemoveVerificationMethod removes the first entry across all relationships
// matching methodID, dropping any relationship array that becomes empty.
// Returns model.ErrNotFound if methodID contains no "#" fragment or no entry
// matches.
func (d *Document) RemoveVerificationMethod(methodID string) error {
	if !strings.Contains(methodID, "#") {
		return model.WrapOp("removeVerificationMethod", model.ErrNotFound, fmt.Errorf("method id %q has no fragment", methodID))
	}

	for _, relation := range RelationOrder {
		slice, _ := d.relationSlice(relation)
		before := len(*slice)
		*slice = removeByID(*slice, methodID)
		if len(*slice) < before {
			if len(*slice) == 0 {
				*slice = nil
			}
			return nil
		}
	}

	return model.WrapOp("removeVerificationMethod", model.ErrNotFound, fmt.Errorf("no verification method with id %q", methodID))
}

func removeByID(entries []RelationshipEntry, id string) []RelationshipEntry {
	out := entries[:0:0]
	for _, e := range entries {
		if e.ID() != id {
			out = append(out, e)
		}
	}
	return out
}

// FindService returns the first service for which predicate returns true.
func (d *Document) FindService(predicate func(Service) bool) (*Service, bool) {
	for _, svc := range d.Service {
		if predicate(svc) {
			svc := svc
			return &svc, true
		}
	}
	return nil, false
}

// InsertServiceReplaceExisting inserts svc, replacing any existing service
// with the same id in place, or appending if none matches.
func (d *Document) InsertServiceReplaceExisting(svc Service) {
	for i, existing := range d.Service {
		if existing.ID == svc.ID {
			d.Service[i] = svc
			return
		}
	}
	d.Service = append(d.Service, svc)
}

// RemoveServiceByID removes the service with the given id, if present, and
// drops the Service field entirely (nil, not an empty slice) if it becomes
// empty. Returns false if no service matched.
func (d *Document) RemoveServiceByID(id string) bool {
	out := d.Service[:0:0]
	removed := false
	for _, svc := range d.Service {
		if svc.ID == id {
			removed = true
			continue
		}
		out = append(out, svc)
	}
	if len(out) == 0 {
		d.Service = nil
	} else {
		d.Service = out
	}
	return removed
}

// RevocationServiceID is the fragment suffix identifying a document's
// revocation bitstring service.
const RevocationServiceID = "#revocation"

// RevocationServiceType is the required type of a revocation bitstring
// service.
const RevocationServiceType = "BitstringStatusList"

// FindRevocationService returns the first service whose id ends in
// "#revocation" and whose type is "BitstringStatusList".
func (d *Document) FindRevocationService() (*Service, bool) {
	return d.FindService(func(svc Service) bool {
		return strings.HasSuffix(svc.ID, RevocationServiceID) && svc.Type.First() == RevocationServiceType
	})
}

// MarshalCanonicalJSON renders the document as compact JSON text, the form
// persisted in a Stored Document Envelope.
func (d *Document) MarshalCanonicalJSON() ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, model.WrapOp("documentMarshal", model.ErrEncoding, err)
	}
	return b, nil
}

// ParseDocument parses the canonical JSON text of a DID Document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, model.WrapOp("documentParse", model.ErrEncoding, err)
	}
	return &doc, nil
}
