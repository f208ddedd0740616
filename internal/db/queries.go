package db

const (
	GetProductByID = `
		SELECT id, nome, peso, stl_link, preco, created_at, updated_at
		FROM products WHERE id = ?
	`
)

const (
	GetFilamentByID = `
		SELECT id, nome, cor, peso_total, peso_usado, custo_por_grama, preco_pago, peso_carretel, quantidade_carreteis, created_at, updated_at
		FROM filaments WHERE id = ?
	`

	ConsumeFilament = `
		UPDATE filaments SET peso_usado = peso_usado + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`

	RefundFilament = `
		UPDATE filaments SET peso_usado = MAX(0, peso_usado - ?), updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`
)

const (
	InsertJob = `
		INSERT INTO print_jobs (
			identificador, produto_id, filamento_id,
			quantidade_total, quantidade_impressa, quantidade_falha,
			prioridade, tempo_estimado_minutos, posicao,
			cliente_nome, cliente_contato, etapa_cliente, status, observacoes
		)
		VALUES (?, ?, ?, ?, 0, 0, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	BackfillJobIdentifier = `
		UPDATE print_jobs SET identificador = ? WHERE id = ?
	`

	InsertJobMaterial = `
		INSERT INTO print_job_materials (print_job_id, filamento_id, peso_gasto)
		VALUES (?, ?, ?)
	`

	GetJobByID = `
		SELECT id, identificador, produto_id, filamento_id, quantidade_total, quantidade_impressa, quantidade_falha, prioridade, tempo_estimado_minutos, posicao, cliente_nome, cliente_contato, etapa_cliente, status, observacoes, data_inicio, data_conclusao, created_at, updated_at
		FROM print_jobs WHERE id = ?
	`

	GetJobByIdentifier = `
		SELECT id, identificador, produto_id, filamento_id, quantidade_total, quantidade_impressa, quantidade_falha, prioridade, tempo_estimado_minutos, posicao, cliente_nome, cliente_contato, etapa_cliente, status, observacoes, data_inicio, data_conclusao, created_at, updated_at
		FROM print_jobs WHERE UPPER(identificador) = ?
	`

	MaxJobPosition = `
		SELECT COALESCE(MAX(posicao), 0) FROM print_jobs
	`

	ListQueue = `
		SELECT
			q.id, q.identificador, q.produto_id, q.filamento_id,
			q.quantidade_total, q.quantidade_impressa, q.quantidade_falha,
			q.prioridade, q.tempo_estimado_minutos, q.posicao,
			q.cliente_nome, q.cliente_contato, q.etapa_cliente, q.status, q.observacoes,
			q.data_inicio, q.data_conclusao, q.created_at, q.updated_at,
			p.nome, p.peso, p.stl_link,
			f.nome, f.cor, f.custo_por_grama
		FROM print_jobs q
		LEFT JOIN products p ON q.produto_id = p.id
		LEFT JOIN filaments f ON q.filamento_id = f.id
		ORDER BY
			CASE q.status
				WHEN 'IMPRIMINDO' THEN 1
				WHEN 'FILA' THEN 2
				WHEN 'PAUSADO' THEN 3
				WHEN 'CONCLUIDO' THEN 4
				WHEN 'CANCELADO' THEN 5
				ELSE 6
			END,
			q.posicao ASC,
			q.created_at ASC,
			q.id ASC
	`

	ListJobMaterials = `
		SELECT pjm.id, pjm.print_job_id, pjm.filamento_id, pjm.peso_gasto, f.nome, f.cor, f.custo_por_grama
		FROM print_job_materials pjm
		JOIN filaments f ON pjm.filamento_id = f.id
		WHERE pjm.print_job_id = ?
		ORDER BY pjm.id ASC
	`

	UpdateJob = `
		UPDATE print_jobs SET
			status = ?,
			etapa_cliente = ?,
			quantidade_impressa = ?,
			quantidade_falha = ?,
			cliente_nome = ?,
			cliente_contato = ?,
			observacoes = ?,
			data_inicio = ?,
			data_conclusao = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	UpdateJobPosition = `
		UPDATE print_jobs SET posicao = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`

	DeleteJobMaterials = `DELETE FROM print_job_materials WHERE print_job_id = ?`

	DeleteJob = `DELETE FROM print_jobs WHERE id = ?`
)
