package movement

import (
	"errors"
	"time"
)

type CreateMovimientoDTO struct {
	DocumentoID   int64  `json:"documento_id"`
	AreaDestinoID int64  `json:"area_destino_id"`
	Motivo        string `json:"motivo"`
}

func (dto CreateMovimientoDTO) Validate() error {
	if dto.DocumentoID <= 0 {
		return errors.New("documento_id is required")
	}
	if dto.AreaDestinoID <= 0 {
		return errors.New("area_destino_id is required")
	}
	if dto.Motivo == "" {
		return errors.New("motivo is required")
	}
	return nil
}

type DateRangeDTO struct {
	Desde time.Time `json:"desde"`
	Hasta time.Time `json:"hasta"`
}

func (dto DateRangeDTO) Validate() error {
	if dto.Desde.IsZero() || dto.Hasta.IsZero() {
		return errors.New("desde and hasta are required")
	}
	if dto.Hasta.Before(dto.Desde) {
		return errors.New("hasta must not precede desde")
	}
	return nil
}
