package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/pkg/errors"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		BaseURL:     srv.URL + "/api",
		MaxFailures: 2,
		OpenTimeout: time.Minute,
		Location:    time.UTC,
	}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestGetAppointment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/appointments/7", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":{"idCita":7,"fecha":"2024-05-10","horaInicio":"09:00","horaFin":"09:30",
			"idPaciente":3,"idPersonal":2,"estado":"CONFIRMADA",
			"paciente":{"idPaciente":3,"persona":{"nombres":"Ana","apellidos":"Torres","telefono":"987654321"}}}}`))
	})

	ctx := WithToken(context.Background(), "user-token")
	a, err := c.Get(ctx, "7")
	require.NoError(t, err)

	assert.Equal(t, "7", a.ID)
	assert.Equal(t, model.StatusConfirmed, a.Status)
	assert.Equal(t, time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC), a.Start)
	assert.Equal(t, time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC), a.End)
	require.NotNil(t, a.Patient)
	assert.Equal(t, "Ana Torres", a.Patient.FullName)
	assert.Equal(t, "2", a.DoctorID)
}

func TestPatchSendsBackendFieldNames(t *testing.T) {
	var body map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &body))
		w.WriteHeader(http.StatusNoContent)
	})

	date, start, end, doctor, del := "2024-05-11", "10:00", "10:30", "4", true
	err := c.Patch(context.Background(), "7", model.AppointmentPatch{
		Date: &date, StartTime: &start, EndTime: &end, DoctorID: &doctor, CancelOriginal: &del,
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-05-11", body["fecha"])
	assert.Equal(t, "10:00", body["horaInicio"])
	assert.Equal(t, "10:30", body["horaFin"])
	assert.Equal(t, "4", body["idPersonal"])
	assert.Equal(t, true, body["eliminarOriginal"])
	assert.NotContains(t, body, "estado")
}

func TestStatusErrorsMapToKinds(t *testing.T) {
	tests := []struct {
		code int
		kind errors.Kind
	}{
		{http.StatusUnauthorized, errors.KindUnauthorized},
		{http.StatusNotFound, errors.KindNotFound},
		{http.StatusConflict, errors.KindConflict},
		{http.StatusUnprocessableEntity, errors.KindBadRequest},
		{http.StatusInternalServerError, errors.KindUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				w.Write([]byte(`{"message":"boom"}`))
			})
			err := c.Delete(context.Background(), "1")
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestBreakerOpensOnServerErrorsOnly(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 2; i++ {
		require.Error(t, c.Delete(context.Background(), "1"))
	}
	err := c.Delete(context.Background(), "1")
	assert.True(t, errors.IsKind(err, errors.KindUnavailable))
	assert.Equal(t, 2, calls, "open breaker must not reach the backend")
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 4; i++ {
		_ = c.Delete(context.Background(), "1")
	}
	assert.Equal(t, 4, calls)
}

func TestCallerCancellationDoesNotTripBreaker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"doctores":[{"idPersonal":2,"nombreCompleto":"Dr. Luis Paredes"}]}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		_, err := c.Combos(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, errors.IsKind(err, errors.KindUnavailable))
	}

	combos, err := c.Combos(context.Background())
	require.NoError(t, err)
	assert.Len(t, combos.Doctors, 1)
}

func TestCombos(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/appointments/combos", r.URL.Path)
		w.Write([]byte(`{"doctores":[{"idPersonal":2,"nombreCompleto":"Dr. Luis Paredes"}]}`))
	})

	combos, err := c.Combos(context.Background())
	require.NoError(t, err)
	require.Len(t, combos.Doctors, 1)
	assert.Equal(t, model.Doctor{ID: "2", Name: "Dr. Luis Paredes"}, combos.Doctors[0])
	assert.True(t, combos.HasDoctor("2"))
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"token":"t","uuid":"u-1","username":"admin","email":"admin@clinica.pe"}`))
	})

	resp, err := c.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", resp.UUID)

	_, err = c.Login(context.Background(), "admin", "wrong")
	assert.True(t, errors.IsKind(err, errors.KindUnauthorized))
}

func TestListSkipsMalformedRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-05-01", r.URL.Query().Get("desde"))
		w.Write([]byte(`[
			{"idCita":"1","fecha":"2024-05-02","horaInicio":"08:00","horaFin":"08:30","estado":"PENDIENTE"},
			{"idCita":"2","fecha":"not-a-date","horaInicio":"08:00","horaFin":"08:30"}
		]`))
	})

	list, err := c.List(context.Background(), model.AppointmentFilter{From: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "1", list[0].ID)
}

func TestGetBudget(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"idPresupuesto":"b-123456789","idPaciente":1,
			"paciente":{"idPaciente":1,"persona":{"nombres":"Ana","apellidos":"Torres"}},
			"detalles":[
				{"procedimiento":"Limpieza","precioUnitario":50,"cantidad":1,"montoPagado":50},
				{"procedimiento":"Empaste","precioUnitario":"150.00","cantidad":1,"montoPagado":0}
			]}`))
	})

	b, err := c.GetBudget(context.Background(), "b-123456789")
	require.NoError(t, err)
	totals := b.Totals()
	assert.Equal(t, "S/ 200.00", totals.Total.String())
	assert.Equal(t, "S/ 150.00", totals.Owed.String())
	assert.Equal(t, "Torres", b.PatientSurname)
}
