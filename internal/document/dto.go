package document

import (
	"errors"
	"time"
)

type CreateDocumentoDTO struct {
	NumeroCorrelativo string    `json:"numero_correlativo"`
	TipoDocumentoID   int64     `json:"tipo_documento_id"`
	AreaOrigenID      int64     `json:"area_origen_id"`
	Gestion           string    `json:"gestion"`
	FechaDocumento    time.Time `json:"fecha_documento"`
	Descripcion       string    `json:"descripcion"`
	ResponsableID     *int64    `json:"responsable_id,omitempty"`
	UbicacionFisica   string    `json:"ubicacion_fisica"`
}

func (dto CreateDocumentoDTO) Validate() error {
	if dto.NumeroCorrelativo == "" {
		return errors.New("numero_correlativo is required")
	}
	if dto.TipoDocumentoID <= 0 {
		return errors.New("tipo_documento_id is required")
	}
	if dto.AreaOrigenID <= 0 {
		return errors.New("area_origen_id is required")
	}
	if dto.Gestion == "" {
		return errors.New("gestion is required")
	}
	if dto.FechaDocumento.IsZero() {
		return errors.New("fecha_documento is required")
	}
	return nil
}

// UpdateDocumentoDTO is a partial update: nil fields are left untouched.
type UpdateDocumentoDTO struct {
	Descripcion     *string `json:"descripcion,omitempty"`
	ResponsableID   *int64  `json:"responsable_id,omitempty"`
	UbicacionFisica *string `json:"ubicacion_fisica,omitempty"`
	Estado          *string `json:"estado,omitempty"`
}

func (dto UpdateDocumentoDTO) Validate() error {
	if dto.Estado != nil && !IsValidEstado(*dto.Estado) {
		return errors.New("estado must be one of activo, en_transito, archivado")
	}
	return nil
}

// BusquedaDocumentoDTO holds conjunctive search filters. Zero values mean
// "not filtered"; date bounds are inclusive.
type BusquedaDocumentoDTO struct {
	Codigo            string     `json:"codigo,omitempty"`
	NumeroCorrelativo string     `json:"numero_correlativo,omitempty"`
	TipoDocumentoID   *int64     `json:"tipo_documento_id,omitempty"`
	AreaOrigenID      *int64     `json:"area_origen_id,omitempty"`
	Gestion           string     `json:"gestion,omitempty"`
	FechaDesde        *time.Time `json:"fecha_desde,omitempty"`
	FechaHasta        *time.Time `json:"fecha_hasta,omitempty"`
	Estado            string     `json:"estado,omitempty"`
	CodigoQR          string     `json:"codigo_qr,omitempty"`
}

func (dto BusquedaDocumentoDTO) Validate() error {
	if dto.Estado != "" && !IsValidEstado(dto.Estado) {
		return errors.New("estado must be one of activo, en_transito, archivado")
	}
	if dto.FechaDesde != nil && dto.FechaHasta != nil && dto.FechaHasta.Before(*dto.FechaDesde) {
		return errors.New("fecha_hasta must not precede fecha_desde")
	}
	return nil
}
