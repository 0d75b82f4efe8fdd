package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"
)

func TestAddressingValidate(t *testing.T) {
	t.Run("zero value is invalid", func(t *testing.T) {
		err := Addressing{}.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("direct requires a recipient", func(t *testing.T) {
		err := DirectTo(domain.PrincipalID{}).Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

		assert.NoError(t, DirectTo(newPrincipal()).Validate())
	})

	t.Run("bulk requires at least one entry", func(t *testing.T) {
		err := BulkTo(nil).Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("bulk entry must carry a role or a user", func(t *testing.T) {
		err := BulkTo([]RecipientEntry{{}}).Validate()
		require.Error(t, err)

		assert.NoError(t, BulkTo([]RecipientEntry{{Role: domain.RoleAdmin}}).Validate())
		assert.NoError(t, BulkTo([]RecipientEntry{{User: newPrincipal()}}).Validate())
	})

	t.Run("bulk entry role must be a known role", func(t *testing.T) {
		err := BulkTo([]RecipientEntry{{Role: domain.Role("mayor")}}).Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("broadcast is always valid", func(t *testing.T) {
		assert.NoError(t, BroadcastToAll().Validate())
	})
}

func TestAddressingApply(t *testing.T) {
	t.Run("direct stamps the recipient", func(t *testing.T) {
		recipient := newPrincipal()
		n := &Notification{}
		DirectTo(recipient).Apply(n)

		assert.Equal(t, recipient, n.Recipient)
		assert.Empty(t, n.Recipients)
		assert.False(t, n.IsBroadcast)
	})

	t.Run("bulk copies the entry list", func(t *testing.T) {
		entries := []RecipientEntry{{User: newPrincipal()}}
		n := &Notification{}
		BulkTo(entries).Apply(n)

		require.Len(t, n.Recipients, 1)
		entries[0].Read = true
		assert.False(t, n.Recipients[0].Read, "stored list must not alias the input")
	})

	t.Run("broadcast sets the flag only", func(t *testing.T) {
		n := &Notification{}
		BroadcastToAll().Apply(n)
		assert.True(t, n.IsBroadcast)
		assert.True(t, n.Recipient.IsNil())
	})
}

func TestAddressingUserAddressed(t *testing.T) {
	alice, bob := newPrincipal(), newPrincipal()

	assert.Equal(t, []domain.PrincipalID{alice}, DirectTo(alice).UserAddressed())
	assert.Equal(t, []domain.PrincipalID{alice, bob}, BulkTo([]RecipientEntry{
		{User: alice},
		{Role: domain.RoleAdmin},
		{User: bob},
	}).UserAddressed())
	assert.Nil(t, BroadcastToAll().UserAddressed(), "broadcast names nobody concretely")
}
