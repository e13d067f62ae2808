package registration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	t.Run("pending registration resumes at personal info", func(t *testing.T) {
		next, effects, err := Transition(StepPhoneEntry, RegistrationFound{Status: PAYMENT_PENDING})

		require.NoError(t, err)
		assert.Equal(t, StepPersonalInfo, next)
		assert.Empty(t, effects)
	})

	t.Run("completed registration jumps to payment", func(t *testing.T) {
		next, _, err := Transition(StepPhoneEntry, RegistrationFound{Status: PAYMENT_COMPLETED})

		require.NoError(t, err)
		assert.Equal(t, StepPayment, next)
	})

	t.Run("failed registration jumps to payment", func(t *testing.T) {
		next, _, err := Transition(StepPhoneEntry, RegistrationFound{Status: PAYMENT_FAILED})

		require.NoError(t, err)
		assert.Equal(t, StepPayment, next)
	})

	t.Run("contact match starts fresh at personal info", func(t *testing.T) {
		next, _, err := Transition(StepPhoneEntry, ContactMatched{})

		require.NoError(t, err)
		assert.Equal(t, StepPersonalInfo, next)
	})

	t.Run("no match is terminal", func(t *testing.T) {
		next, _, err := Transition(StepPhoneEntry, NoMatch{})

		require.NoError(t, err)
		assert.Equal(t, StepNotFound, next)
	})

	t.Run("personal info submit uploads then persists", func(t *testing.T) {
		next, effects, err := Transition(StepPersonalInfo, PersonalInfoSubmitted{})

		require.NoError(t, err)
		assert.Equal(t, StepTravelInfo, next)
		assert.Equal(t, []Effect{EffectUploadPhotos, EffectPersist}, effects)
	})

	t.Run("travel and guests submits persist", func(t *testing.T) {
		next, effects, err := Transition(StepTravelInfo, TravelInfoSubmitted{})
		require.NoError(t, err)
		assert.Equal(t, StepAdditionalGuests, next)
		assert.Equal(t, []Effect{EffectPersist}, effects)

		next, effects, err = Transition(StepAdditionalGuests, GuestsSubmitted{})
		require.NoError(t, err)
		assert.Equal(t, StepPayment, next)
		assert.Equal(t, []Effect{EffectPersist}, effects)
	})

	t.Run("payment confirmation allocates barcodes", func(t *testing.T) {
		next, effects, err := Transition(StepPayment, PaymentConfirmed{})

		require.NoError(t, err)
		assert.Equal(t, StepCompleted, next)
		assert.Equal(t, []Effect{EffectAllocateBarcodes, EffectPersist}, effects)
	})

	t.Run("payment decline is retryable", func(t *testing.T) {
		next, _, err := Transition(StepPayment, PaymentDeclined{})
		require.NoError(t, err)
		assert.Equal(t, StepPaymentFailed, next)

		next, effects, err := Transition(StepPaymentFailed, CheckoutOpened{})
		require.NoError(t, err)
		assert.Equal(t, StepPayment, next)
		assert.Contains(t, effects, EffectCreateOrder)
	})

	t.Run("late success after a recorded failure still completes", func(t *testing.T) {
		next, effects, err := Transition(StepPaymentFailed, PaymentConfirmed{})

		require.NoError(t, err)
		assert.Equal(t, StepCompleted, next)
		assert.Contains(t, effects, EffectAllocateBarcodes)
	})

	t.Run("back navigation never has effects", func(t *testing.T) {
		for step, want := range map[Step]Step{
			StepPersonalInfo:     StepPhoneEntry,
			StepTravelInfo:       StepPersonalInfo,
			StepAdditionalGuests: StepTravelInfo,
			StepPayment:          StepAdditionalGuests,
			StepPaymentFailed:    StepAdditionalGuests,
		} {
			next, effects, err := Transition(step, WentBack{})
			require.NoError(t, err)
			assert.Equal(t, want, next)
			assert.Empty(t, effects)
		}
	})

	t.Run("undefined transitions error", func(t *testing.T) {
		_, _, err := Transition(StepTravelInfo, GuestsSubmitted{})

		var regErr *Error
		require.True(t, errors.As(err, &regErr))
		assert.Equal(t, REASON_INVALID_TRANSITION, regErr.Reason)
	})
}
