// Package logs stores finished games in a sqlite database.
package logs

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3" // repository assumes sqlite

	"github.com/kazanlab/toguz/tkn"
	"github.com/kazanlab/toguz/toguz"
)

type Repository struct {
	db *sqlx.DB

	insert *sqlx.NamedStmt
}

type Game struct {
	Day        string    `db:"day"`
	ID         string    `db:"id"`
	Timestamp  time.Time `db:"time"`
	White      string    `db:"white"`
	Black      string    `db:"black"`
	Result     string    `db:"result"`
	Winner     string    `db:"winner"`
	WhiteStore int       `db:"white_store"`
	BlackStore int       `db:"black_store"`
	Moves      int       `db:"moves"`
	Record     string    `db:"record"`
}

// PlayerGame is a game seen from one player's side.
type PlayerGame struct {
	Day           string    `db:"day"`
	ID            string    `db:"id"`
	Timestamp     time.Time `db:"time"`
	Player        string    `db:"player"`
	Opponent      string    `db:"opponent"`
	Color         string    `db:"color"`
	Win           string    `db:"win"`
	Result        string    `db:"result"`
	Store         int       `db:"store"`
	OpponentStore int       `db:"opponent_store"`
	Moves         int       `db:"moves"`
}

func Open(path string) (*Repository, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err = db.Exec(createGameTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create game table: %w", err)
	}
	if _, err = db.Exec(createPlayerView); err != nil {
		db.Close()
		return nil, fmt.Errorf("create player_games view: %w", err)
	}

	repo := &Repository{db: db}
	repo.insert, err = db.PrepareNamed(insertStmt)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("prepare: %w", err)
	}
	return repo, nil
}

// NewGame describes the game played from start to final. The game need
// not be over; Result and Winner stay empty until it is.
func NewGame(white, black string, start, final *toguz.Position, at time.Time) (*Game, error) {
	played := final.Log()
	if len(played) < len(start.Log()) {
		return nil, fmt.Errorf("final position precedes start: %d < %d moves",
			len(played), len(start.Log()))
	}
	var pits []int
	for _, r := range played[len(start.Log()):] {
		pits = append(pits, r.Pit)
	}
	rec, err := tkn.NewRecord(start, pits)
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	rec.SetTag("White", white)
	rec.SetTag("Black", black)
	rec.SetTag("Date", at.Format("2006.01.02"))

	g := &Game{
		Day:        at.Format("2006-01-02"),
		ID:         uuid.NewString(),
		Timestamp:  at,
		White:      white,
		Black:      black,
		WhiteStore: final.Store(toguz.White),
		BlackStore: final.Store(toguz.Black),
		Moves:      len(pits),
	}
	if over, winner := final.GameOver(); over {
		g.Result = tkn.FormatResult(winner)
		g.Winner = "tie"
		if winner != toguz.NoSide {
			g.Winner = winner.String()
		}
	}
	g.Record = tkn.FormatRecord(rec)
	return g, nil
}

func (r *Repository) InsertGame(g *Game) error {
	return r.insertGame(r.insert, g)
}

func (r *Repository) insertGame(stmt *sqlx.NamedStmt, g *Game) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	_, err := stmt.Exec(g)
	return err
}

func (r *Repository) InsertGames(gs []*Game) error {
	txn, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer txn.Rollback()
	stmt := txn.NamedStmt(r.insert)
	for _, g := range gs {
		if e := r.insertGame(stmt, g); e != nil {
			return e
		}
	}
	return txn.Commit()
}

func (r *Repository) Game(id string) (*Game, error) {
	var g Game
	if err := r.db.Get(&g, selectGame, id); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Repository) PlayerGames(name string) ([]PlayerGame, error) {
	var out []PlayerGame
	if err := r.db.Select(&out, selectPlayerGames, name); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) Close() {
	r.db.Close()
}
