package mappers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/passage/internal/domain/subscription"
	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
)

func TestSubscriptionMapper_AlertsAndOrigin(t *testing.T) {
	now := time.Now().UTC()
	sub, err := subscription.NewActiveSubscription(3, 4, nil, now.Add(time.Hour), vo.OriginFamilySync, now)
	require.NoError(t, err)
	require.NoError(t, sub.SetID(9))
	sub.RecordAlert(vo.AlertTraffic90)
	sub.RecordAlert(vo.AlertTraffic80)

	m := NewSubscriptionMapper()
	model, err := m.ToModel(sub)
	require.NoError(t, err)
	assert.JSONEq(t, `["traffic_80","traffic_90"]`, string(model.AlertsSent))
	assert.Equal(t, "family_sync", model.Origin)

	back, err := m.ToEntity(model)
	require.NoError(t, err)
	assert.True(t, back.AlertsSent().Has(vo.AlertTraffic90))
	assert.True(t, back.Origin().IsFamily())
	assert.Equal(t, sub.Credential(), back.Credential())
}

func TestSubscriptionMapper_RejectsBrokenRows(t *testing.T) {
	m := NewSubscriptionMapper()

	_, err := m.ToEntity(&models.SubscriptionModel{ID: 1, UUID: "x", AccessToken: "y", Status: "active", Origin: "trial"})
	assert.Error(t, err)

	cred := vo.NewCredential()
	_, err = m.ToEntity(&models.SubscriptionModel{ID: 1, UUID: cred.UUID(), AccessToken: cred.AccessToken(), Status: "expired", Origin: "trial"})
	assert.Error(t, err)
}

func TestInboundToEntity_ParsesStreamSettings(t *testing.T) {
	in, err := InboundToEntity(&models.InboundModel{
		ID:             1,
		NodeID:         2,
		Tag:            "hy2",
		Protocol:       "hysteria2",
		Port:           8443,
		StreamSettings: []byte(`{"obfs":{"type":"salamander","password":"secret"}}`),
		IsEnabled:      true,
	})
	require.NoError(t, err)
	assert.True(t, in.StreamSettings().IsSalamander())

	_, err = InboundToEntity(&models.InboundModel{ID: 1, NodeID: 2, Port: 1, StreamSettings: []byte(`{bad`)})
	assert.Error(t, err)
}
