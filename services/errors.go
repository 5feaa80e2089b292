package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// AppError is a failure the API reports as-is: an HTTP status, a stable code and a
// human readable (Portuguese) message. Two AppErrors match under errors.Is when their codes do.
type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func (e *AppError) withMessage(msg string) *AppError {
	out := *e
	out.Message = msg
	return &out
}

func newAppError(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

var (
	ErrUnauthenticated = newAppError(http.StatusUnauthorized, "error.unauthenticated", "Nao autorizado")
	ErrForbidden       = newAppError(http.StatusForbidden, "error.forbidden", "Acesso negado")
	ErrAdminOnlyStatus = newAppError(http.StatusForbidden, "error.adminOnly",
		"Apenas o administrador pode aprovar/rejeitar agendamentos")
	ErrAdminOnlyRoomInfo = newAppError(http.StatusForbidden, "error.adminOnly",
		"Apenas o administrador pode editar informacoes da sala")

	ErrMissingFields = newAppError(http.StatusBadRequest, "error.missingFields",
		"Campos obrigatorios: data, horario e nome do cliente")
	ErrInvalidDate   = newAppError(http.StatusBadRequest, "error.invalidDate", "Data invalida, use o formato AAAA-MM-DD")
	ErrInvalidSlot   = newAppError(http.StatusBadRequest, "error.invalidSlot", "Horario invalido")
	ErrInvalidStatus = newAppError(http.StatusBadRequest, "error.invalidStatus", "Status invalido")
	ErrInvalidPeriod = newAppError(http.StatusBadRequest, "error.invalidPeriod", "Mes ou ano invalido")
	ErrInvalidBody   = newAppError(http.StatusBadRequest, "error.invalidPayload", "Corpo da requisicao invalido")
	ErrInvalidImage  = newAppError(http.StatusBadRequest, "error.invalidImage", "Imagem invalida (JPEG, PNG, WebP ou GIF ate 5 MB)")

	ErrCapacityReached = newAppError(http.StatusConflict, "error.capacityReached",
		"Este dia ja tem o maximo de agendamentos")
	ErrSlotTaken = newAppError(http.StatusConflict, "error.slotTaken", "Este horario ja esta reservado neste dia")

	ErrBookingNotFound = newAppError(http.StatusNotFound, "error.bookingNotFound", "Agendamento nao encontrado")

	ErrInvalidSignup      = newAppError(http.StatusBadRequest, "error.invalidSignup", "Email invalido ou senha com menos de 6 caracteres")
	ErrEmailTaken         = newAppError(http.StatusConflict, "error.emailTaken", "Este email ja esta cadastrado")
	ErrInvalidCredentials = newAppError(http.StatusUnauthorized, "error.invalidCredentials", "Email ou senha invalidos")
)

func capacityError(capacity int) *AppError {
	return ErrCapacityReached.withMessage(fmt.Sprintf("Este dia ja tem o maximo de %d agendamentos", capacity))
}

func slotTakenError(label string) *AppError {
	return ErrSlotTaken.withMessage(fmt.Sprintf("O horario %q ja esta reservado neste dia", label))
}

// isDuplicateKeyError reports unique index violations across the drivers we run on.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1062
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "duplicate") || strings.Contains(lower, "unique constraint")
}
