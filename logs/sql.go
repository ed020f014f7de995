package logs

const createGameTable = `
CREATE TABLE IF NOT EXISTS games (
  day string not null,
  id string not null primary key,
  time datetime,
  white varchar,
  black varchar,
  result string,
  winner string,
  white_store int,
  black_store int,
  moves int,
  record text
)`

const createPlayerView = `
CREATE VIEW IF NOT EXISTS player_games (
  day, id, time, player, opponent, color, win, result, store, opponent_store, moves
) AS
SELECT day, id, time, black, white, 'black',
       CASE winner WHEN 'white' THEN 'lose' WHEN 'black' THEN 'win' ELSE 'tie' END,
       result, black_store, white_store, moves
 FROM games
UNION
SELECT day, id, time, white, black, 'white',
       CASE winner WHEN 'white' THEN 'win' WHEN 'black' THEN 'lose' ELSE 'tie' END,
       result, white_store, black_store, moves
 FROM games
`

const insertStmt = `
INSERT INTO games (day, id, time, white, black, result, winner, white_store, black_store, moves, record)
VALUES (:day, :id, :time, :white, :black, :result, :winner, :white_store, :black_store, :moves, :record)
`

const selectPlayerGames = `
SELECT day, id, time, player, opponent, color, win, result, store, opponent_store, moves
FROM player_games
WHERE player = ?
ORDER BY time, id
`

const selectGame = `
SELECT day, id, time, white, black, result, winner, white_store, black_store, moves, record
FROM games
WHERE id = ?
`
