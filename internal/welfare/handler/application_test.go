package handler

import (
	"net/http"
	"testing"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/testutil"
)

func TestApplicationFilter(t *testing.T) {
	scheduled := domain.StatusScheduled

	testutil.RunTestCases(t, []testutil.TestCase[string, domain.ApplicationFilter]{
		{Name: "empty", Input: "", Expected: domain.ApplicationFilter{}},
		{Name: "program only", Input: "program_id=p-1", Expected: domain.ApplicationFilter{ProgramID: "p-1"}},
		{
			Name:     "status and program",
			Input:    "status=scheduled&program_id=p-2",
			Expected: domain.ApplicationFilter{Status: &scheduled, ProgramID: "p-2"},
		},
		{Name: "unknown status", Input: "status=archived", WantErr: true},
		{Name: "status is case sensitive", Input: "status=Scheduled", WantErr: true},
	}, func(query string) (domain.ApplicationFilter, error) {
		return applicationFilter(testutil.NewHTTPRequest(http.MethodGet, "/api/applications?"+query, nil))
	})
}
