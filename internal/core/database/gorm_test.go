package database

import (
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{
			name: "native dsn untouched",
			in:   "root:pw@tcp(127.0.0.1:3306)/places?parseTime=true",
			want: "root:pw@tcp(127.0.0.1:3306)/places?parseTime=true",
		},
		{
			name: "url with credentials",
			in:   "mysql://root:pw@db:3306/places",
			want: "root:pw@tcp(db:3306)/places?charset=utf8mb4&parseTime=true",
		},
		{
			name: "jdbc params translated",
			in:   "jdbc:mysql://db:3306/places?useUnicode=true&characterEncoding=utf8&useSSL=false&serverTimezone=UTC",
			user: "app", pass: "secret",
			want: "app:secret@tcp(db:3306)/places?charset=utf8&loc=UTC&parseTime=true&tls=false",
		},
		{
			name: "query credentials",
			in:   "mysql://db/places?user=u&password=p&parseTime=false",
			want: "u:p@tcp(db)/places?charset=utf8mb4&parseTime=false",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeMySQLDSN(tc.in, tc.user, tc.pass); got != tc.want {
				t.Fatalf("got  %s\nwant %s", got, tc.want)
			}
		})
	}
}

func TestMaskDSN(t *testing.T) {
	if got := maskDSN("root:pw@tcp(db)/x"); got != "root:****@tcp(db)/x" {
		t.Fatalf("mask = %s", got)
	}
	if got := maskDSN("tcp(db)/x"); got != "tcp(db)/x" {
		t.Fatalf("mask = %s", got)
	}
}

func TestNewGormRejectsUnknownDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "mongo"}, zap.NewNop())
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewGormSQLite(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "places.db"), MaxOpenConns: 1}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewGorm: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()

	var n int
	if err := db.Raw("SELECT 1").Scan(&n).Error; err != nil || n != 1 {
		t.Fatalf("SELECT 1 = %d, %v", n, err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("max open conns = %d", got)
	}
}
