package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDashboardRequest_Validate(t *testing.T) {
	assert.NoError(t, (&DashboardRequest{}).Validate())
	assert.NoError(t, (&DashboardRequest{Date: "2024-02-29"}).Validate())
	assert.Error(t, (&DashboardRequest{Date: "2023-02-29"}).Validate())
}
