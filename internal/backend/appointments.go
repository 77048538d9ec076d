package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/pkg/errors"
)

func (c *Client) List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	q := url.Values{}
	if !filter.From.IsZero() {
		q.Set("desde", filter.From.In(c.loc).Format("2006-01-02"))
	}
	if !filter.To.IsZero() {
		q.Set("hasta", filter.To.In(c.loc).Format("2006-01-02"))
	}
	if filter.DoctorID != "" {
		q.Set("idPersonal", filter.DoctorID)
	}
	if filter.Status != "" {
		q.Set("estado", filter.Status.BackendCode())
	}

	var dtos []model.BackendAppointment
	if err := c.do(ctx, "appointments.list", http.MethodGet, "/appointments", q, nil, &dtos); err != nil {
		return nil, err
	}

	out := make([]*model.Appointment, 0, len(dtos))
	for i := range dtos {
		a, err := model.AppointmentFromBackend(&dtos[i], c.loc)
		if err != nil {
			// one malformed row must not blank the whole calendar
			c.logger.Warn().Err(err).Msg("skipping malformed appointment")
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (*model.Appointment, error) {
	var dto model.BackendAppointment
	if err := c.do(ctx, "appointments.get", http.MethodGet, "/appointments/"+url.PathEscape(id), nil, nil, &dto); err != nil {
		return nil, err
	}
	a, err := model.AppointmentFromBackend(&dto, c.loc)
	if err != nil {
		return nil, errors.Unavailable("Cita inválida recibida del servidor", err)
	}
	return a, nil
}

func (c *Client) Create(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	body := model.AppointmentToBackend(a, c.loc)
	body.IDCita = ""
	var dto model.BackendAppointment
	if err := c.do(ctx, "appointments.create", http.MethodPost, "/appointments", nil, body, &dto); err != nil {
		return nil, err
	}
	return c.merge(a, &dto), nil
}

func (c *Client) Update(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	var dto model.BackendAppointment
	path := "/appointments/" + url.PathEscape(a.ID)
	if err := c.do(ctx, "appointments.update", http.MethodPatch, path, nil, model.AppointmentToBackend(a, c.loc), &dto); err != nil {
		return nil, err
	}
	return c.merge(a, &dto), nil
}

// merge prefers the backend's echo of the record; backends that answer with an
// empty body or only the id keep the submitted values.
func (c *Client) merge(sent *model.Appointment, dto *model.BackendAppointment) *model.Appointment {
	if dto.Fecha != "" {
		if got, err := model.AppointmentFromBackend(dto, c.loc); err == nil {
			return got
		}
	}
	out := sent.Clone()
	if id := dto.IDCita.String(); id != "" {
		out.ID = id
	}
	return out
}

func (c *Client) Patch(ctx context.Context, id string, patch model.AppointmentPatch) error {
	path := "/appointments/" + url.PathEscape(id)
	return c.do(ctx, "appointments.patch", http.MethodPatch, path, nil, model.AppointmentPatchToBackend(patch), nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "appointments.delete", http.MethodDelete, "/appointments/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) Combos(ctx context.Context) (*model.Combos, error) {
	var dto model.BackendCombos
	if err := c.do(ctx, "appointments.combos", http.MethodGet, "/appointments/combos", nil, nil, &dto); err != nil {
		return nil, err
	}
	combos := &model.Combos{Doctors: []model.Doctor{}, Reasons: []model.Reason{}}
	for _, d := range dto.Doctores {
		combos.Doctors = append(combos.Doctors, model.DoctorFromBackend(d))
	}
	for _, r := range dto.Motivos {
		combos.Reasons = append(combos.Reasons, model.Reason{ID: r.IDMotivo.String(), Description: r.Descripcion})
	}
	return combos, nil
}
