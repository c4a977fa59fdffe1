package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/diillson/cloud-snitch-map/internal/shared/types"
)

// JSONConsole implementa o ConsoleInterface emitindo linhas JSON via zerolog, para uso em pipelines
// e execuções não interativas.
type JSONConsole struct {
	logger zerolog.Logger
	out    io.Writer
}

// NewJSONConsole cria um JSONConsole que escreve em out (stdout quando nil).
func NewJSONConsole(out io.Writer, level string) *JSONConsole {
	if out == nil {
		out = os.Stdout
	}
	logger := zerolog.New(out).With().Timestamp().Logger().Level(ParseLevel(level))
	return &JSONConsole{logger: logger, out: out}
}

// ParseLevel converte o nível textual; valores desconhecidos viram info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger devolve o logger subjacente.
func (c *JSONConsole) Logger() zerolog.Logger {
	return c.logger
}

func (c *JSONConsole) Print(a ...interface{}) {
	c.logger.Info().Msg(fmt.Sprint(a...))
}

func (c *JSONConsole) Printf(format string, a ...interface{}) {
	c.logger.Info().Msg(strings.TrimRight(fmt.Sprintf(format, a...), "\n"))
}

func (c *JSONConsole) Println(a ...interface{}) {
	c.logger.Info().Msg(fmt.Sprint(a...))
}

func (c *JSONConsole) LogInfo(format string, a ...interface{}) {
	c.logger.Info().Msgf(format, a...)
}

func (c *JSONConsole) LogWarning(format string, a ...interface{}) {
	c.logger.Warn().Msgf(format, a...)
}

func (c *JSONConsole) LogError(format string, a ...interface{}) {
	c.logger.Error().Msgf(format, a...)
}

func (c *JSONConsole) LogSuccess(format string, a ...interface{}) {
	c.logger.Info().Bool("success", true).Msgf(format, a...)
}

type jsonStatus struct {
	logger zerolog.Logger
}

// Status registra o início da etapa; Update registra cada atualização.
func (c *JSONConsole) Status(message string) types.StatusHandle {
	c.logger.Debug().Str("status", "start").Msg(message)
	return &jsonStatus{logger: c.logger}
}

func (h *jsonStatus) Update(message string) {
	h.logger.Debug().Str("status", "update").Msg(message)
}

func (h *jsonStatus) Stop() {}

type jsonProgress struct {
	logger  zerolog.Logger
	mu      sync.Mutex
	current int
	total   int
}

// ProgressWithTotal registra um evento de progresso a cada incremento.
func (c *JSONConsole) ProgressWithTotal(total int) types.ProgressHandle {
	return &jsonProgress{logger: c.logger, total: total}
}

func (h *jsonProgress) Increment() {
	h.mu.Lock()
	h.current++
	current := h.current
	h.mu.Unlock()

	h.logger.Info().
		Int("loaded", current).
		Int("total", h.total).
		Msg("progress")
}

func (h *jsonProgress) Stop() {}

// jsonTable acumula as linhas e as emite como um array de objetos ao renderizar.
type jsonTable struct {
	logger  zerolog.Logger
	columns []string
	rows    [][]string
}

func (c *JSONConsole) CreateTable() types.TableInterface {
	return &jsonTable{logger: c.logger}
}

func (t *jsonTable) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

func (t *jsonTable) AddRow(cells ...interface{}) {
	row := make([]string, len(cells))
	for i, cell := range cells {
		row[i] = pterm.RemoveColorFromString(fmt.Sprint(cell))
	}
	t.rows = append(t.rows, row)
}

// Render emite uma linha de log por linha da tabela e devolve string vazia.
func (t *jsonTable) Render() string {
	for _, row := range t.rows {
		dict := zerolog.Dict()
		for i, col := range t.columns {
			if i < len(row) {
				dict = dict.Str(col, row[i])
			}
		}
		t.logger.Info().Dict("row", dict).Msg("table row")
	}
	return ""
}

func (c *JSONConsole) DisplayEventBars(title string, bars []types.EventBar) {
	arr := zerolog.Arr()
	for _, b := range bars {
		arr = arr.Dict(zerolog.Dict().
			Str("label", b.Label).
			Int("count", b.Count).
			Int("errors", b.Errors))
	}
	c.logger.Info().Str("title", title).Array("events", arr).Msg("event bars")
}
