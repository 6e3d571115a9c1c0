package integration_test

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

// Каждый тест поднимает свой сервер через helpers.NewTestServer:
// отдельная sqlite в памяти, свой miniredis и своя папка хранилища.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}
