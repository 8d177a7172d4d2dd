package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	log := NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = NewLogger("error")
	assert.Equal(t, logrus.ErrorLevel, log.GetLevel())
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log := NewLogger("nonsense")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestTradeLoggerSignalGenerated(t *testing.T) {
	log, buf := setupTestLogger()
	tradeLogger := NewTradeLogger(log)

	tradeLogger.LogSignalGenerated(
		"AAPL",
		time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
		"BUY",
		0.85,
		4,
		"VERY_GOOD",
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "AAPL", logEntry["symbol"])
	assert.Equal(t, "BUY", logEntry["action"])
	assert.Equal(t, "trading", logEntry["component"])
}

func TestTradeLoggerPositionOpened(t *testing.T) {
	log, buf := setupTestLogger()
	tradeLogger := NewTradeLogger(log)

	tradeLogger.LogPositionOpened("AAPL", 150.25, 100, 132.22, 187.81, 0.85)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "AAPL", logEntry["symbol"])
	assert.Equal(t, float64(100), logEntry["shares"])
}

func TestTradeLoggerPositionClosed(t *testing.T) {
	log, buf := setupTestLogger()
	tradeLogger := NewTradeLogger(log)

	tradeLogger.LogPositionClosed("AAPL", 165.50, "TAKE_PROFIT", 1425.30, 94.70, 12)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "TAKE_PROFIT", logEntry["exit_reason"])
	assert.Equal(t, float64(12), logEntry["holding_days"])
}

func TestTradeLoggerRiskRejection(t *testing.T) {
	log, buf := setupTestLogger()
	tradeLogger := NewTradeLogger(log)

	tradeLogger.LogRiskRejection("AAPL", "insufficient_funds", 0.72, 512.40)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "insufficient_funds", logEntry["reason"])
	assert.Equal(t, "warning", logEntry["level"])
}

func TestTradeLoggerBacktestComplete(t *testing.T) {
	log, buf := setupTestLogger()
	tradeLogger := NewTradeLogger(log)

	tradeLogger.LogBacktestComplete("AAPL", 42, 0.183, 11830000, 950.2)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(42), logEntry["total_trades"])
}

func TestLoggerJSONFormat(t *testing.T) {
	log, buf := setupTestLogger()
	tradeLogger := NewTradeLogger(log)

	tradeLogger.LogPositionOpened("MSFT", 410.10, 25, 360.89, 512.63, 0.91)

	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	assert.NoError(t, err)
	assert.NotEmpty(t, logEntry)
}

func BenchmarkTradeLoggerPositionOpened(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	tradeLogger := NewTradeLogger(log)

	for i := 0; i < b.N; i++ {
		tradeLogger.LogPositionOpened("AAPL", 150.25, 100, 132.22, 187.81, 0.85)
	}
}
