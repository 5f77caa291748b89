package web

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfcwefc/msme-desk/internal/expert"
)

func createExpert(t *testing.T, srv *Server, body map[string]interface{}) expert.Expert {
	t.Helper()
	w := apiRequest(t, srv, "POST", "/experts", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var e expert.Expert
	decodeBody(t, w, &e)
	return e
}

func TestExpertCRUD(t *testing.T) {
	srv, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/experts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	e := createExpert(t, srv, map[string]interface{}{
		"name":      "Rohan Kamat",
		"expertise": []string{"Export", "GST"},
		"stats":     map[string]int{"eventsAttended": 2},
	})
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, []string{"Export", "GST"}, e.Expertise)
	assert.Equal(t, 2, e.Stats.EventsAttended)

	w = apiRequest(t, srv, "PUT", "/experts/"+e.ID, map[string]interface{}{
		"designation": "Senior Consultant",
		"stats":       map[string]int{"registrationsDone": 4},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated expert.Expert
	decodeBody(t, w, &updated)
	assert.Equal(t, "Senior Consultant", updated.Designation)
	assert.Equal(t, "Rohan Kamat", updated.Name)
	assert.Equal(t, expert.Stats{RegistrationsDone: 4}, updated.Stats)

	w = apiRequest(t, srv, "GET", "/experts/"+e.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = apiRequest(t, srv, "DELETE", "/experts/"+e.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	decodeBody(t, w, &resp)
	assert.Equal(t, "Expert deleted successfully", resp["message"])

	for _, method := range []string{"GET", "PUT", "DELETE"} {
		var body interface{}
		if method == "PUT" {
			body = map[string]string{"name": "X"}
		}
		w = apiRequest(t, srv, method, "/experts/"+e.ID, body)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
		assert.Equal(t, "Expert not found", errorMessage(t, w), method)
	}
}

func TestCreateExpertRequiresName(t *testing.T) {
	srv, _ := testServer(t)
	w := apiRequest(t, srv, "POST", "/experts", map[string]string{"designation": "Consultant"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name is required", errorMessage(t, w))
}

func TestPlanEndpoints(t *testing.T) {
	srv, _ := testServer(t)
	e := createExpert(t, srv, map[string]interface{}{"name": "Sunita Desai"})
	base := "/experts/" + e.ID

	w := apiRequest(t, srv, "POST", base+"/plans", map[string]interface{}{"month": "January", "year": 2024})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = apiRequest(t, srv, "POST", base+"/plans", map[string]interface{}{"year": 2024})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = apiRequest(t, srv, "POST", base+"/plans/0/current", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = apiRequest(t, srv, "POST", base+"/plans/0/weeks", map[string]interface{}{
		"startDate": "2024-01-01", "endDate": "2024-01-07",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = apiRequest(t, srv, "POST", base+"/plans/0/weeks", map[string]interface{}{
		"startDate": "2024-01-08T00:00:00.000Z", "endDate": "2024-01-14", "plan": "Cluster visit",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var got expert.Expert
	decodeBody(t, w, &got)
	require.Len(t, got.Plans[0].Weeks, 2)
	assert.Equal(t, "Week 1", got.Plans[0].Weeks[0].WeekLabel)
	assert.Equal(t, "Week 2", got.Plans[0].Weeks[1].WeekLabel)
	assert.Equal(t, expert.StatusPending, got.Plans[0].Weeks[1].Status)

	w = apiRequest(t, srv, "POST", base+"/plans/0/weeks", map[string]interface{}{"startDate": "2024-01-15"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = apiRequest(t, srv, "GET", base+"/active-week?date=2024-01-10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var aw expert.ActiveWeek
	decodeBody(t, w, &aw)
	require.NotNil(t, aw.Week)
	assert.Equal(t, 1, aw.WeekIndex)
	assert.Equal(t, "Cluster visit", aw.Week.Plan)

	w = apiRequest(t, srv, "GET", base+"/active-week?date=2024-01-20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var none map[string]interface{}
	decodeBody(t, w, &none)
	assert.Nil(t, none["week"])
	assert.NotNil(t, none["plan"])

	w = apiRequest(t, srv, "PUT", base+"/plans/0/weeks/1", map[string]interface{}{
		"startDate": "2024-01-08", "endDate": "2024-01-14", "achievement": "3 units visited", "status": "Completed",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeBody(t, w, &got)
	assert.Equal(t, "3 units visited", got.Plans[0].Weeks[1].Achievement)
	assert.Equal(t, 2, got.Plans[0].Weeks[1].WeekNumber)

	w = apiRequest(t, srv, "DELETE", base+"/plans/0/weeks/0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &got)
	require.Len(t, got.Plans[0].Weeks, 1)

	w = apiRequest(t, srv, "DELETE", base+"/plans/0/weeks/5", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Week not found", errorMessage(t, w))

	w = apiRequest(t, srv, "POST", base+"/plans/3/current", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Plan not found", errorMessage(t, w))

	w = apiRequest(t, srv, "GET", base+"/active-week?date=soon", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = apiRequest(t, srv, "POST", "/experts/missing/plans", map[string]interface{}{"month": "May", "year": 2024})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
