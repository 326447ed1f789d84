// Package visibility resolves conditional question visibility. A question
// that names depends_on_question_id is shown only while the governing answer
// exists and differs from hide_for_dependent_value. Resolution is pure and
// recomputed on every pass; Lint reports structural problems (unknown targets
// and cycles) once per form load.
package visibility
