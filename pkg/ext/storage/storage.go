// Package storage is a sample extension: a key/value store backed by
// SQLite, exposed to scripts through opaque handle values.
package storage

import (
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/funvibe/revo/internal/core"
)

const stateKey = "storage.dbs"

func dbs(ins *core.Instance) map[int64]*sql.DB {
	if m, ok := ins.HostState[stateKey].(map[int64]*sql.DB); ok {
		return m
	}
	m := make(map[int64]*sql.DB)
	ins.HostState[stateKey] = m
	return m
}

// Register installs the storage natives on an instance.
func Register(ins *core.Instance) {
	ins.RegisterNative("db-open", "path:text!", nativeOpen)
	ins.RegisterNative("db-close", "db:handle!", nativeClose)
	ins.RegisterNative("db-put", "db:handle! key:text! value:text!", nativePut)
	ins.RegisterNative("db-get", "db:handle! key:text!", nativeGet)
	ins.RegisterNative("db-remove", "db:handle! key:text!", nativeRemove)
}

func nativeOpen(ins *core.Instance, lv *core.Level) core.Bounce {
	db, err := sql.Open("sqlite", lv.Arg(0).Text())
	if err != nil {
		return ins.Failf(ins.Syms().Intern("storage"), "cannot open database: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (k TEXT PRIMARY KEY, v TEXT)`); err != nil {
		db.Close()
		return ins.Failf(ins.Syms().Intern("storage"), "cannot prepare database: %v", err)
	}
	id := ins.NextHandleID()
	dbs(ins)[id] = db
	lv.Out().InitHandle(id)
	return core.BounceDone
}

func openDB(ins *core.Instance, lv *core.Level) (*sql.DB, core.Bounce, bool) {
	db, ok := dbs(ins)[lv.Arg(0).Handle()]
	if !ok {
		return nil, ins.Failf(ins.Syms().Intern("storage"), "database handle is closed"), false
	}
	return db, 0, true
}

func nativeClose(ins *core.Instance, lv *core.Level) core.Bounce {
	db, b, ok := openDB(ins, lv)
	if !ok {
		return b
	}
	delete(dbs(ins), lv.Arg(0).Handle())
	if err := db.Close(); err != nil {
		return ins.Failf(ins.Syms().Intern("storage"), "close failed: %v", err)
	}
	lv.Out().InitNulled()
	return core.BounceDone
}

func nativePut(ins *core.Instance, lv *core.Level) core.Bounce {
	db, b, ok := openDB(ins, lv)
	if !ok {
		return b
	}
	_, err := db.Exec(`INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		lv.Arg(1).Text(), lv.Arg(2).Text())
	if err != nil {
		return ins.Failf(ins.Syms().Intern("storage"), "put failed: %v", err)
	}
	core.CopyCell(lv.Out(), lv.Arg(2))
	return core.BounceDone
}

func nativeGet(ins *core.Instance, lv *core.Level) core.Bounce {
	db, b, ok := openDB(ins, lv)
	if !ok {
		return b
	}
	var v string
	err := db.QueryRow(`SELECT v FROM kv WHERE k = ?`, lv.Arg(1).Text()).Scan(&v)
	switch err {
	case nil:
		ins.InitText(lv.Out(), v)
	case sql.ErrNoRows:
		lv.Out().InitNulled()
	default:
		return ins.Failf(ins.Syms().Intern("storage"), "get failed: %v", err)
	}
	return core.BounceDone
}

func nativeRemove(ins *core.Instance, lv *core.Level) core.Bounce {
	db, b, ok := openDB(ins, lv)
	if !ok {
		return b
	}
	res, err := db.Exec(`DELETE FROM kv WHERE k = ?`, lv.Arg(1).Text())
	if err != nil {
		return ins.Failf(ins.Syms().Intern("storage"), "remove failed: %v", err)
	}
	n, _ := res.RowsAffected()
	lv.Out().InitLogic(n > 0)
	return core.BounceDone
}
