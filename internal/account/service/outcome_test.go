package service_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vaultmind/accountd/internal/account/service"
)

func TestStatusOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{service.ErrValidation, http.StatusBadRequest},
		{service.ErrUsernameTaken, http.StatusBadRequest},
		{service.ErrRegistrationExpired, http.StatusBadRequest},
		{service.ErrTokenIssuance, http.StatusBadRequest},
		{service.ErrAccessFailed, http.StatusUnauthorized},
		{service.ErrTOTPDeclined, http.StatusUnauthorized},
		{service.ErrAccountNotActive, http.StatusUnauthorized},
		{service.ErrInternal, http.StatusInternalServerError},
		{errors.New("anything unexpected"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, service.StatusOf(tc.err), "err=%v", tc.err)
	}
}

func TestStatusOfSeesThroughWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("%w: email address is not valid", service.ErrValidation)
	require.Equal(t, http.StatusBadRequest, service.StatusOf(wrapped))
}
