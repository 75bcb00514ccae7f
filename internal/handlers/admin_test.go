package handlers_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gyansetu/internal/models"
)

type listStudentsResponse struct {
	Data []struct {
		ID         string  `json:"id"`
		FullName   string  `json:"full_name"`
		RollNumber *string `json:"roll_number"`
		ExamCenter *string `json:"exam_center"`
	} `json:"data"`
	Page            int   `json:"page"`
	PageSize        int   `json:"pageSize"`
	Total           int64 `json:"total"`
	TotalPages      int   `json:"totalPages"`
	ResultPublished bool  `json:"resultPublished"`
}

func (s *testServer) seedStudents(t *testing.T, count int) []string {
	t.Helper()

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		student := &models.Student{
			FullName:         fmt.Sprintf("Student %03d", i),
			Phone:            fmt.Sprintf("90000000%02d", i),
			Email:            fmt.Sprintf("student%03d@example.com", i),
			PaymentStatus:    "success",
			PaymentReference: fmt.Sprintf("TXN-0-%06d", i),
			ResultStatus:     models.ResultPending,
		}
		require.NoError(t, s.store.CreateStudent(context.Background(), student))
		ids = append(ids, student.ID.String())
	}
	return ids
}

func TestAdminSurfaceRequiresAdminRole(t *testing.T) {
	server := newTestServer(t)

	resp := server.do(t, "GET", "/api/admin/students", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	userCookie := server.login(t, "Asha", "asha@example.com", "user")
	for _, path := range []string{"/api/admin/students", "/api/admin/export"} {
		resp := server.do(t, "GET", path, nil, userCookie)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
		resp.Body.Close()
	}
	resp = server.do(t, "POST", "/api/admin/result-toggle", fiber.Map{"isPublished": true}, userCookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminListPagination(t *testing.T) {
	server := newTestServer(t)
	server.seedStudents(t, 120)
	cookie := server.login(t, "Admin", "admin@example.com", "admin")

	resp := server.do(t, "GET", "/api/admin/students", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var first listStudentsResponse
	decodeBody(t, resp, &first)
	assert.Len(t, first.Data, 50)
	assert.Equal(t, 1, first.Page)
	assert.EqualValues(t, 120, first.Total)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, "Student 119", first.Data[0].FullName, "newest application first")

	resp = server.do(t, "GET", "/api/admin/students?page=3", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var last listStudentsResponse
	decodeBody(t, resp, &last)
	assert.Len(t, last.Data, 20)
	assert.Equal(t, 3, last.TotalPages)

	// Past the end: empty page, same totals.
	resp = server.do(t, "GET", "/api/admin/students?page=4", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var past listStudentsResponse
	decodeBody(t, resp, &past)
	assert.Empty(t, past.Data)
	assert.EqualValues(t, 120, past.Total)
	assert.Equal(t, 3, past.TotalPages)

	// Nonsense page numbers clamp to the first page.
	resp = server.do(t, "GET", "/api/admin/students?page=0", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var clamped listStudentsResponse
	decodeBody(t, resp, &clamped)
	assert.Equal(t, 1, clamped.Page)
	assert.Len(t, clamped.Data, 50)
}

func TestAdminBulkAssign(t *testing.T) {
	server := newTestServer(t)
	ids := server.seedStudents(t, 3)
	cookie := server.login(t, "Admin", "admin@example.com", "admin")

	csvText := strings.Join([]string{
		"id,roll_number,exam_center",
		ids[0] + ",R-001,Center A",
		",R-002,Center B",
		"00000000-0000-0000-0000-000000000000,R-003,Center C",
		ids[1] + ",R-004,",
	}, "\n")

	resp := server.do(t, "POST", "/api/admin/bulk-assign", fiber.Map{"csv": csvText}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		UpdatedCount int `json:"updatedCount"`
	}
	decodeBody(t, resp, &result)
	assert.Equal(t, 2, result.UpdatedCount, "blank-id and unknown-id rows are skipped")

	students, err := server.store.AllStudents(context.Background())
	require.NoError(t, err)
	byID := make(map[string]models.Student, len(students))
	for _, student := range students {
		byID[student.ID.String()] = student
	}

	first := byID[ids[0]]
	require.NotNil(t, first.RollNumber)
	assert.Equal(t, "R-001", *first.RollNumber)
	require.NotNil(t, first.ExamCenter)
	assert.Equal(t, "Center A", *first.ExamCenter)

	second := byID[ids[1]]
	require.NotNil(t, second.RollNumber)
	assert.Equal(t, "R-004", *second.RollNumber)
	assert.Nil(t, second.ExamCenter, "blank cell clears the column")

	third := byID[ids[2]]
	assert.Nil(t, third.RollNumber, "untouched rows keep their values")
}

func TestAdminBulkAssignRejectsBadPayload(t *testing.T) {
	server := newTestServer(t)
	cookie := server.login(t, "Admin", "admin@example.com", "admin")

	resp := server.do(t, "POST", "/api/admin/bulk-assign", fiber.Map{"csv": "id,\"broken\nrow"}, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Header only means nothing to apply, not an error.
	resp = server.do(t, "POST", "/api/admin/bulk-assign", fiber.Map{"csv": "id,roll_number,exam_center"}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		UpdatedCount int `json:"updatedCount"`
	}
	decodeBody(t, resp, &result)
	assert.Zero(t, result.UpdatedCount)
}

func TestAdminResultToggle(t *testing.T) {
	server := newTestServer(t)
	cookie := server.login(t, "Admin", "admin@example.com", "admin")

	resp := server.do(t, "POST", "/api/admin/result-toggle", fiber.Map{"isPublished": true}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = server.do(t, "GET", "/api/admin/students", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing listStudentsResponse
	decodeBody(t, resp, &listing)
	assert.True(t, listing.ResultPublished)

	resp = server.do(t, "POST", "/api/admin/result-toggle", fiber.Map{"isPublished": false}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = server.do(t, "GET", "/api/admin/students", nil, cookie)
	decodeBody(t, resp, &listing)
	assert.False(t, listing.ResultPublished)
}

func TestAdminExport(t *testing.T) {
	server := newTestServer(t)
	ids := server.seedStudents(t, 2)
	cookie := server.login(t, "Admin", "admin@example.com", "admin")

	resp := server.do(t, "GET", "/api/admin/export?format=csv", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	csvText := string(body)
	assert.True(t, strings.HasPrefix(csvText, "id,full_name,phone,email"))
	for _, id := range ids {
		assert.Contains(t, csvText, id)
	}

	resp = server.do(t, "GET", "/api/admin/export", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "application/vnd.ms-excel")
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	xmlText := string(body)
	assert.Contains(t, xmlText, `<?mso-application progid="Excel.Sheet"?>`)
	assert.Contains(t, xmlText, `<Data ss:Type="String">Student 000</Data>`)
}

func TestAdminBroadcastControls(t *testing.T) {
	server := newTestServer(t)
	adminCookie := server.login(t, "Admin", "admin@example.com", "admin")
	userCookie := server.login(t, "Asha", "asha@example.com", "user")

	resp := server.do(t, "POST", "/api/admin/live", fiber.Map{"url": "https://stream.example.com/class"}, adminCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = server.do(t, "POST", "/api/admin/notification", fiber.Map{"text": "Exam on Sunday"}, adminCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = server.do(t, "POST", "/api/admin/scholarship", fiber.Map{"text": "Round 2 open"}, adminCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Students read the broadcast state but cannot write it.
	resp = server.do(t, "POST", "/api/admin/live", fiber.Map{"url": "https://evil.example.com"}, userCookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = server.do(t, "GET", "/api/live/state", nil, userCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state struct {
		LiveURL      string `json:"live_url"`
		Notification string `json:"notification"`
		Scholarship  string `json:"scholarship"`
	}
	decodeBody(t, resp, &state)
	assert.Equal(t, "https://stream.example.com/class", state.LiveURL)
	assert.Equal(t, "Exam on Sunday", state.Notification)
	assert.Equal(t, "Round 2 open", state.Scholarship)
}

func TestLiveChatEndpoint(t *testing.T) {
	server := newTestServer(t)
	cookie := server.login(t, "Asha", "asha@example.com", "user")

	resp := server.do(t, "POST", "/api/live/chat", fiber.Map{"text": ""}, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = server.do(t, "POST", "/api/live/chat", fiber.Map{"text": "hello"}, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var msg struct {
		ID     string `json:"id"`
		Author string `json:"author"`
		Text   string `json:"text"`
	}
	decodeBody(t, resp, &msg)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "Asha", msg.Author)
	assert.Equal(t, "hello", msg.Text)

	state := server.hub.State()
	require.Len(t, state.Chat, 1)
	assert.Equal(t, "hello", state.Chat[0].Text)
}
