package web

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfcwefc/msme-desk/internal/record"
	"github.com/bfcwefc/msme-desk/internal/stats"
)

func areaCount(g stats.Global, name string) int {
	for _, nv := range g.Area {
		if nv.Name == name {
			return nv.Value
		}
	}
	return -1
}

func createJSONRecord(t *testing.T, srv *Server, body map[string]interface{}) record.VisitRecord {
	t.Helper()
	w := apiRequest(t, srv, "POST", "/records", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rec record.VisitRecord
	decodeBody(t, w, &rec)
	return rec
}

func TestCreateClassifiesAndCounts(t *testing.T) {
	srv, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/records/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var before stats.Global
	decodeBody(t, w, &before)

	w = multipartRequest(t, srv, "POST", "/records", [][2]string{
		{"businessName", "Naik Cashews"},
		{"visitorName", "Asha Naik"},
		{"address", "123 Panaji Road"},
		{"dateOfVisit", "2024-01-10"},
		{"expertName", "R. Kamat"},
		{"expertName", "S. Desai"},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created record.VisitRecord
	decodeBody(t, w, &created)

	assert.Equal(t, "North Goa", string(created.Area))
	assert.Equal(t, record.StatusPending, created.Status)
	assert.Equal(t, record.NameList("R. Kamat, S. Desai"), created.ExpertName)
	assert.Equal(t, "", created.Photos)

	w = apiRequest(t, srv, "GET", "/records?area="+url.QueryEscape("North Goa"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []record.VisitRecord
	decodeBody(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	w = apiRequest(t, srv, "GET", "/records/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var after stats.Global
	decodeBody(t, w, &after)
	assert.Equal(t, areaCount(before, "North Goa")+1, areaCount(after, "North Goa"))
	assert.Equal(t, before.Total+1, after.Total)
}

func TestCreateJSON(t *testing.T) {
	srv, _ := testServer(t)

	rec := createJSONRecord(t, srv, map[string]interface{}{
		"businessName": "Vasco Marine Works",
		"address":      "Vasco da Gama",
		"expertName":   []string{"A", "B"},
		"id":           "client-chosen",
	})
	assert.Equal(t, "South Goa", string(rec.Area))
	assert.Equal(t, record.NameList("A, B"), rec.ExpertName)
	assert.NotEqual(t, "client-chosen", rec.ID)
	assert.NotEmpty(t, rec.DateOfVisit)
}

func TestCreateValidation(t *testing.T) {
	srv, _ := testServer(t)

	w := apiRequest(t, srv, "POST", "/records", map[string]interface{}{"area": "Central Goa"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = apiRequest(t, srv, "POST", "/records", map[string]interface{}{"dateOfVisit": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListFilters(t *testing.T) {
	srv, _ := testServer(t)

	createJSONRecord(t, srv, map[string]interface{}{"businessName": "A", "sector": "Retail Trade", "dateOfVisit": "2024-01-01"})
	createJSONRecord(t, srv, map[string]interface{}{"businessName": "B", "sector": "Service", "dateOfVisit": "2024-02-01"})
	createJSONRecord(t, srv, map[string]interface{}{"businessName": "C", "sector": "R&D+", "dateOfVisit": "2024-03-01"})

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"C", "B", "A"}},
		{"rawSector=Retail+Trade&sector=Service", []string{"A"}},
		{"rawSector=" + url.QueryEscape("R&D+"), []string{"C"}},
		{"sector=serv", []string{"B"}},
		{"startDate=2024-02-01", []string{"C", "B"}},
		{"endDate=2024-02-01", []string{"B", "A"}},
		{"area=&status=", []string{"C", "B", "A"}},
		{"search=zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := apiRequest(t, srv, "GET", "/records?"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			var list []record.VisitRecord
			decodeBody(t, w, &list)

			got := make([]string, 0, len(list))
			for _, r := range list {
				got = append(got, r.BusinessName)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	w := apiRequest(t, srv, "GET", "/records?startDate=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUpdateDeleteRecord(t *testing.T) {
	srv, _ := testServer(t)
	rec := createJSONRecord(t, srv, map[string]interface{}{"businessName": "A", "address": "Margao"})

	w := apiRequest(t, srv, "GET", "/records/"+rec.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = apiRequest(t, srv, "PUT", "/records/"+rec.ID, map[string]interface{}{
		"status":    "Resolved",
		"createdAt": "2000-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated record.VisitRecord
	decodeBody(t, w, &updated)
	assert.Equal(t, "Resolved", updated.Status)
	assert.Equal(t, "A", updated.BusinessName)
	assert.Equal(t, "South Goa", string(updated.Area))
	assert.True(t, updated.CreatedAt.Equal(rec.CreatedAt))

	w = apiRequest(t, srv, "PUT", "/records/"+rec.ID, map[string]interface{}{"area": "Nowhere"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = apiRequest(t, srv, "DELETE", "/records/"+rec.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	decodeBody(t, w, &resp)
	assert.Equal(t, "MSME deleted successfully", resp["message"])

	for _, method := range []string{"GET", "PUT", "DELETE"} {
		var body interface{}
		if method == "PUT" {
			body = map[string]string{"status": "Pending"}
		}
		w = apiRequest(t, srv, method, "/records/"+rec.ID, body)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
		assert.Equal(t, "MSME not found", errorMessage(t, w), method)
	}
}

func TestStatsRefreshAfterWrites(t *testing.T) {
	dir := t.TempDir()
	srv, _ := testServer(t)
	// Re-create with caching on to check invalidation.
	cached, err := NewServer(srv.db, Options{UploadDir: dir, StatsTTL: time.Hour})
	require.NoError(t, err)

	w := apiRequest(t, cached, "GET", "/records/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	rec := createJSONRecord(t, cached, map[string]interface{}{"businessName": "A", "status": "Resolved"})

	var g stats.Global
	w = apiRequest(t, cached, "GET", "/records/stats", nil)
	decodeBody(t, w, &g)
	assert.Equal(t, 1, g.Total)
	assert.Equal(t, 1, g.Resolved)

	apiRequest(t, cached, "PUT", "/records/"+rec.ID, map[string]string{"status": "Pending"})
	w = apiRequest(t, cached, "GET", "/records/stats", nil)
	decodeBody(t, w, &g)
	assert.Equal(t, 0, g.Resolved)
	assert.Equal(t, 1, g.Pending)

	apiRequest(t, cached, "DELETE", "/records/"+rec.ID, nil)
	w = apiRequest(t, cached, "GET", "/records/stats", nil)
	decodeBody(t, w, &g)
	assert.Equal(t, 0, g.Total)
}

func TestExpertStatsEndpoint(t *testing.T) {
	srv, _ := testServer(t)
	createJSONRecord(t, srv, map[string]interface{}{
		"businessName": "A", "expertName": "Rohan Kamat", "status": "Resolved",
		"udyamRegistrationNo": "UDYAM-GA-01-0000001", "dateOfVisit": "2024-01-05",
	})
	createJSONRecord(t, srv, map[string]interface{}{"businessName": "B", "expertName": "rohan kamat", "dateOfVisit": "2024-01-06"})
	createJSONRecord(t, srv, map[string]interface{}{"businessName": "C", "expertName": "Rohan Kamat, S. Desai"})

	w := apiRequest(t, srv, "GET", "/records/expert-stats/"+url.PathEscape("Rohan Kamat"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var e stats.Expert
	decodeBody(t, w, &e)

	assert.Equal(t, 2, e.TotalVisits)
	assert.Equal(t, 1, e.Resolved)
	assert.Equal(t, 1, e.Pending)
	assert.Equal(t, 1, e.Registrations)
	require.Len(t, e.RecentActivity, 2)
	assert.Equal(t, "B", e.RecentActivity[0].BusinessName)
}

func TestPhotoRoundTrip(t *testing.T) {
	srv, _ := testServer(t)

	w := multipartRequest(t, srv, "POST", "/records", [][2]string{{"businessName", "Photo Shop"}},
		[]formFile{{"one.jpg", "1"}, {"two.PNG", "2"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rec record.VisitRecord
	decodeBody(t, w, &rec)

	first := strings.Split(rec.Photos, ",")
	require.Len(t, first, 2)
	assert.True(t, strings.HasSuffix(first[1], ".png"))

	w = multipartRequest(t, srv, "POST", "/records/"+rec.ID+"/photos", nil, []formFile{{"three.jpg", "3"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeBody(t, w, &rec)

	paths := strings.Split(rec.Photos, ",")
	require.Len(t, paths, 3)
	assert.Equal(t, first, paths[:2])

	// Stored files are served back at their recorded path.
	w = apiRequest(t, srv, "GET", paths[2], nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", w.Body.String())
	_, err := os.Stat(filepath.Join(srv.uploadDir, strings.TrimPrefix(paths[2], "/uploads/")))
	assert.NoError(t, err)

	w = apiRequest(t, srv, "DELETE", "/records/"+rec.ID+"/photos", map[string]string{"photoUrl": paths[1]})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeBody(t, w, &rec)
	assert.Equal(t, paths[0]+","+paths[2], rec.Photos)

	stored, err := srv.records.Repository().GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Photos, stored.Photos)
}

func TestPhotoErrors(t *testing.T) {
	srv, _ := testServer(t)
	rec := createJSONRecord(t, srv, map[string]interface{}{"businessName": "A"})

	w := multipartRequest(t, srv, "POST", "/records/missing/photos", nil, []formFile{{"a.jpg", "1"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = multipartRequest(t, srv, "POST", "/records/"+rec.ID+"/photos", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No files uploaded", errorMessage(t, w))

	w = apiRequest(t, srv, "DELETE", "/records/"+rec.ID+"/photos", map[string]string{"photoUrl": "/uploads/x.jpg"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No photos to delete", errorMessage(t, w))

	w = apiRequest(t, srv, "DELETE", "/records/missing/photos", map[string]string{"photoUrl": "/uploads/x.jpg"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	six := make([]formFile, record.MaxUploads+1)
	for i := range six {
		six[i] = formFile{name: "p.jpg", content: "x"}
	}
	w = multipartRequest(t, srv, "POST", "/records/"+rec.ID+"/photos", nil, six)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
