package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(env map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range env {
		v.Set(k, val)
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "api", cfg.Prefix)
	assert.Equal(t, 10*time.Second, cfg.Tx.MaxWait)
	assert.Equal(t, 60*time.Second, cfg.Tx.Timeout)
	assert.Equal(t, int64(5<<20), cfg.UploadMaxSize)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "supabase", cfg.Storage.Driver)
}

func TestDSN(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]interface{}{
		"DB_HOST":     "db",
		"DB_PASSWORD": "secret",
	}))
	require.NoError(t, err)
	assert.Equal(t,
		"host=db user=postgres password=secret dbname=bkhome port=5432 sslmode=disable TimeZone=Asia/Ho_Chi_Minh",
		cfg.Database.DSN())

	cfg, err = fromViper(newViper(map[string]interface{}{"DATABASE_URL": "postgres://u:p@h/db"}))
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@h/db", cfg.Database.DSN())
}

func TestRejectsBadValues(t *testing.T) {
	_, err := fromViper(newViper(map[string]interface{}{"STORAGE_DRIVER": "ftp"}))
	assert.Error(t, err)

	_, err = fromViper(newViper(map[string]interface{}{"TX_MAX_WAIT": "2m", "TX_TIMEOUT": "1m"}))
	assert.Error(t, err)
}

func TestPrefixAndOrigins(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]interface{}{
		"PREFIX":       "/v1/",
		"CORS_ORIGINS": "http://a.test, http://b.test,",
	}))
	require.NoError(t, err)
	assert.Equal(t, "v1", cfg.Prefix)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}
