package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dagmawib/receipt-verifier/internal/verify"
)

var _ = Describe("Server", func() {
	var (
		db        *mockDB
		verifier  *mockVerifier
		server    *Server
		callerKey *APIKey
		recorder  *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		db = newMockDB()
		verifier = &mockVerifier{result: verify.Result{Success: true}}
		service := NewServiceWithDeps(db, verifier, nil,
			&mockIDGenerator{ids: []string{"id-1", "id-2", "id-3"}},
			&mockTimeSource{},
		)
		server = NewServerWithMux(service, "admin-secret", http.NewServeMux())

		var err error
		callerKey, err = service.CreateKey("caller")
		Expect(err).NotTo(HaveOccurred())

		recorder = httptest.NewRecorder()
	})

	Describe("POST /api/verify", func() {
		var body string

		BeforeEach(func() {
			body = `{"institution": "telebirr", "reference": "CEH4E52ZXV"}`
		})

		makeRequest := func(apiKey string) {
			req := httptest.NewRequest("POST", "/api/verify", strings.NewReader(body))
			if apiKey != "" {
				req.Header.Set("X-API-Key", apiKey)
			}
			server.ServeHTTP(recorder, req)
		}

		It("should verify and return the engine result", func() {
			makeRequest(callerKey.Key)

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var result verify.Result
			Expect(json.Unmarshal(recorder.Body.Bytes(), &result)).To(Succeed())
			Expect(result.Success).To(BeTrue())

			Expect(verifier.refs).To(HaveLen(1))
			Expect(verifier.refs[0].Institution).To(Equal(verify.InstitutionTelebirr))
			Expect(verifier.refs[0].Value).To(Equal("CEH4E52ZXV"))
		})

		It("should record usage against the calling key", func() {
			makeRequest(callerKey.Key)

			Expect(db.usage).To(HaveLen(1))
			Expect(db.usage[0].KeyID).To(Equal(callerKey.ID))
		})

		It("should reject a missing api key", func() {
			makeRequest("")

			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
			Expect(verifier.refs).To(BeEmpty())
		})

		It("should reject an unknown api key", func() {
			makeRequest("wrong")

			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		})

		When("the body is not JSON", func() {
			BeforeEach(func() {
				body = "not json"
			})

			It("should return 400", func() {
				makeRequest(callerKey.Key)

				Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			})
		})

		When("the institution is unknown", func() {
			BeforeEach(func() {
				body = `{"institution": "wells-fargo", "reference": "X1"}`
			})

			It("should return 400 without calling the engine", func() {
				makeRequest(callerKey.Key)

				Expect(recorder.Code).To(Equal(http.StatusBadRequest))
				Expect(verifier.refs).To(BeEmpty())
			})
		})
	})

	Describe("POST /api/verify/image", func() {
		It("should return the degraded result when no classifier is configured", func() {
			var buf bytes.Buffer
			writer := multipart.NewWriter(&buf)
			part, err := writer.CreateFormFile("file", "receipt.jpg")
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write([]byte("not really a jpeg"))
			Expect(err).NotTo(HaveOccurred())
			Expect(writer.Close()).To(Succeed())

			req := httptest.NewRequest("POST", "/api/verify/image", &buf)
			req.Header.Set("Content-Type", writer.FormDataContentType())
			req.Header.Set("X-API-Key", callerKey.Key)
			server.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var result verify.Result
			Expect(json.Unmarshal(recorder.Body.Bytes(), &result)).To(Succeed())
			Expect(result.Success).To(BeFalse())
			Expect(result.Error).To(ContainSubstring("manual reference entry required"))
		})

		It("should return 400 when no file is provided", func() {
			var buf bytes.Buffer
			writer := multipart.NewWriter(&buf)
			Expect(writer.WriteField("note", "no file here")).To(Succeed())
			Expect(writer.Close()).To(Succeed())

			req := httptest.NewRequest("POST", "/api/verify/image", &buf)
			req.Header.Set("Content-Type", writer.FormDataContentType())
			req.Header.Set("X-API-Key", callerKey.Key)
			server.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("key management", func() {
		It("should create a key with the admin secret", func() {
			req := httptest.NewRequest("POST", "/api/keys", strings.NewReader(`{"name": "new-caller"}`))
			req.Header.Set("X-Admin-Key", "admin-secret")
			server.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusCreated))

			var key APIKey
			Expect(json.Unmarshal(recorder.Body.Bytes(), &key)).To(Succeed())
			Expect(key.Name).To(Equal("new-caller"))
			Expect(key.Key).NotTo(BeEmpty())
		})

		It("should reject key creation without the admin secret", func() {
			req := httptest.NewRequest("POST", "/api/keys", strings.NewReader(`{"name": "new-caller"}`))
			server.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should reject key creation with a wrong admin secret", func() {
			req := httptest.NewRequest("POST", "/api/keys", strings.NewReader(`{"name": "new-caller"}`))
			req.Header.Set("X-Admin-Key", "guess")
			server.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should list issued keys", func() {
			req := httptest.NewRequest("GET", "/api/keys", nil)
			req.Header.Set("X-Admin-Key", "admin-secret")
			server.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var keys []*APIKey
			Expect(json.Unmarshal(recorder.Body.Bytes(), &keys)).To(Succeed())
			Expect(keys).To(HaveLen(1))
		})

		It("should revoke a key", func() {
			req := httptest.NewRequest("DELETE", "/api/keys/"+callerKey.ID, nil)
			req.Header.Set("X-Admin-Key", "admin-secret")
			server.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusNoContent))
			Expect(db.keys).NotTo(HaveKey(callerKey.ID))
		})

		It("should return 404 revoking an unknown key", func() {
			req := httptest.NewRequest("DELETE", "/api/keys/nope", nil)
			req.Header.Set("X-Admin-Key", "admin-secret")
			server.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /api/stats", func() {
		BeforeEach(func() {
			db.usage = []*UsageEntry{
				{ID: "u1", Institution: "cbe", Success: true},
				{ID: "u2", Institution: "telebirr", Success: false},
			}
		})

		It("should serve the aggregated usage view", func() {
			req := httptest.NewRequest("GET", "/api/stats", nil)
			req.Header.Set("X-Admin-Key", "admin-secret")
			server.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var stats UsageStats
			Expect(json.Unmarshal(recorder.Body.Bytes(), &stats)).To(Succeed())
			Expect(stats.Total).To(Equal(2))
			Expect(stats.Succeeded).To(Equal(1))
		})

		It("should require the admin secret", func() {
			req := httptest.NewRequest("GET", "/api/stats", nil)
			server.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	When("no admin key is configured", func() {
		BeforeEach(func() {
			service := NewServiceWithDeps(db, verifier, nil,
				&mockIDGenerator{ids: []string{"id-9"}},
				&mockTimeSource{},
			)
			server = NewServerWithMux(service, "", http.NewServeMux())
		})

		It("should disable the operator endpoints", func() {
			req := httptest.NewRequest("POST", "/api/keys", strings.NewReader(`{"name": "anyone"}`))
			req.Header.Set("X-Admin-Key", "")
			server.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("GET /healthz", func() {
		It("should respond ok without authentication", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			server.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(recorder.Body.String()).To(ContainSubstring(`"status":"ok"`))
		})
	})
})
