package diddoc

import (
	"encoding/json"
	"testing"

	"github.com/dc4eu/didengine/pkg/jose"
	"github.com/dc4eu/didengine/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMethod(id string) VerificationMethod {
	return VerificationMethod{
		ID:         id,
		Controller: "did:gtsc:0xabc",
		Type:       "JsonWebKey",
		PublicKeyJWK: &jose.JWK{
			Alg: "EdDSA", Kty: "OKP", Crv: "Ed25519", X: "xxxx",
		},
	}
}

func TestAddMethodUpsertsAcrossRelationships(t *testing.T) {
	doc := &Document{ID: "did:gtsc:0xabc"}

	m := sampleMethod("did:gtsc:0xabc#key-1")
	require.NoError(t, doc.AddMethod(RelationVerificationMethod, m))
	assert.Len(t, doc.VerificationMethod, 1)

	// Re-adding the same id under a different relation moves it there.
	require.NoError(t, doc.AddMethod(RelationAuthentication, m))
	assert.Len(t, doc.VerificationMethod, 0)
	assert.Len(t, doc.Authentication, 1)
}

func TestAllMethodsFixedOrder(t *testing.T) {
	doc := &Document{ID: "did:gtsc:0xabc"}
	require.NoError(t, doc.AddMethod(RelationCapabilityDelegation, sampleMethod("did:gtsc:0xabc#a")))
	require.NoError(t, doc.AddMethod(RelationVerificationMethod, sampleMethod("did:gtsc:0xabc#b")))

	refs := doc.AllMethods()
	require.Len(t, refs, 2)
	assert.Equal(t, RelationVerificationMethod, refs[0].Relation)
	assert.Equal(t, RelationCapabilityDelegation, refs[1].Relation)
}

func TestFindMethodByID(t *testing.T) {
	doc := &Document{ID: "did:gtsc:0xabc"}
	require.NoError(t, doc.AddMethod(RelationAssertionMethod, sampleMethod("did:gtsc:0xabc#key-9")))

	ref, ok := doc.FindMethodByID("did:gtsc:0xabc#key-9")
	require.True(t, ok)
	assert.Equal(t, RelationAssertionMethod, ref.Relation)

	_, ok = doc.FindMethodByID("did:gtsc:0xabc#missing")
	assert.False(t, ok)
}

func TestRemoveVerificationMethod(t *testing.T) {
	doc := &Document{ID: "did:gtsc:0xabc"}
	require.NoError(t, doc.AddMethod(RelationVerificationMethod, sampleMethod("did:gtsc:0xabc#key-1")))

	require.NoError(t, doc.RemoveVerificationMethod("did:gtsc:0xabc#key-1"))
	assert.Nil(t, doc.VerificationMethod)

	err := doc.RemoveVerificationMethod("did:gtsc:0xabc#key-1")
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = doc.RemoveVerificationMethod("no-fragment")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestServiceInsertFindRemove(t *testing.T) {
	doc := &Document{ID: "did:gtsc:0xabc"}

	svc := Service{ID: "did:gtsc:0xabc#revocation", Type: ServiceType{"BitstringStatusList"}, ServiceEndpoint: "data:,x"}
	doc.InsertServiceReplaceExisting(svc)
	assert.Len(t, doc.Service, 1)

	// Insert with same id replaces, not appends.
	svc2 := svc
	svc2.ServiceEndpoint = "data:,y"
	doc.InsertServiceReplaceExisting(svc2)
	assert.Len(t, doc.Service, 1)
	assert.Equal(t, "data:,y", doc.Service[0].ServiceEndpoint)

	found, ok := doc.FindRevocationService()
	require.True(t, ok)
	assert.Equal(t, "data:,y", found.ServiceEndpoint)

	removed := doc.RemoveServiceByID("did:gtsc:0xabc#revocation")
	assert.True(t, removed)
	assert.Nil(t, doc.Service)
}

func TestServiceTypeMarshalSingleVsArray(t *testing.T) {
	single := ServiceType{"BitstringStatusList"}
	b, err := json.Marshal(single)
	require.NoError(t, err)
	assert.Equal(t, `"BitstringStatusList"`, string(b))

	multi := ServiceType{"A", "B"}
	b, err = json.Marshal(multi)
	require.NoError(t, err)
	assert.JSONEq(t, `["A","B"]`, string(b))

	var back ServiceType
	require.NoError(t, json.Unmarshal([]byte(`"X"`), &back))
	assert.Equal(t, "X", back.First())

	require.NoError(t, json.Unmarshal([]byte(`["Y","Z"]`), &back))
	assert.Equal(t, "Y", back.First())
}

func TestRelationshipEntryMarshalReferenceVsMethod(t *testing.T) {
	ref := NewReferenceEntry("did:gtsc:0xabc#key-1")
	b, err := json.Marshal(ref)
	require.NoError(t, err)
	assert.Equal(t, `"did:gtsc:0xabc#key-1"`, string(b))

	m := NewMethodEntry(sampleMethod("did:gtsc:0xabc#key-1"))
	b, err = json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"id":"did:gtsc:0xabc#key-1"`)

	var back RelationshipEntry
	require.NoError(t, json.Unmarshal([]byte(`"did:gtsc:0xabc#key-2"`), &back))
	assert.Equal(t, "did:gtsc:0xabc#key-2", back.ID())
	assert.Nil(t, back.Method())
}

func TestDocumentMarshalParseRoundTrip(t *testing.T) {
	doc := &Document{ID: "did:gtsc:0xabc"}
	require.NoError(t, doc.AddMethod(RelationVerificationMethod, sampleMethod("did:gtsc:0xabc#key-1")))
	doc.InsertServiceReplaceExisting(Service{ID: "did:gtsc:0xabc#revocation", Type: ServiceType{"BitstringStatusList"}, ServiceEndpoint: "data:,z"})

	raw, err := doc.MarshalCanonicalJSON()
	require.NoError(t, err)

	parsed, err := ParseDocument(raw)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, parsed.ID)
	assert.Len(t, parsed.VerificationMethod, 1)
	assert.Len(t, parsed.Service, 1)
}

func TestParseDocumentMalformed(t *testing.T) {
	_, err := ParseDocument([]byte("not json"))
	assert.ErrorIs(t, err, model.ErrEncoding)
}
