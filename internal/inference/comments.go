package inference

import (
	"regexp"
	"strings"

	"github.com/funvibe/hintinfer/internal/ast"
	"github.com/funvibe/hintinfer/internal/config"
	"github.com/funvibe/hintinfer/internal/values"
)

var (
	functionComment = regexp.MustCompile(config.FunctionCommentPattern)
	targetComment   = regexp.MustCompile(config.TargetCommentPattern)
)

// FindTypeFromCommentHintAssign reads `x = value  # type: T` for name.
func (s *State) FindTypeFromCommentHintAssign(ctx Context, stmt *ast.Assign, name string) (result values.ValueSet) {
	defer recoverContract(s, &result, values.NoValues)
	if len(stmt.Targets) == 0 {
		return values.NoValues
	}
	return s.commentHint(ctx, stmt, stmt.Targets[0], name)
}

// FindTypeFromCommentHintFor reads `for x in xs:  # type: T` for name.
func (s *State) FindTypeFromCommentHintFor(ctx Context, stmt *ast.For, name string) (result values.ValueSet) {
	defer recoverContract(s, &result, values.NoValues)
	return s.commentHint(ctx, stmt, stmt.Target, name)
}

// FindTypeFromCommentHintWith reads `with f() as x:  # type: T` for name.
func (s *State) FindTypeFromCommentHintWith(ctx Context, stmt *ast.With, name string) (result values.ValueSet) {
	defer recoverContract(s, &result, values.NoValues)
	for _, item := range stmt.Items {
		if item.Target != nil && bindsName(item.Target, name) {
			return s.commentHint(ctx, stmt, item.Target, name)
		}
	}
	return values.NoValues
}

// commentHint resolves the target comment of stmt. For a tuple target the
// comment is a tuple too and the component at name's position is taken.
func (s *State) commentHint(ctx Context, stmt ast.Stmt, target ast.Expr, name string) values.ValueSet {
	index := -1
	var elts []ast.Expr
	switch t := target.(type) {
	case *ast.Tuple:
		elts = t.Elts
	case *ast.List:
		elts = t.Elts
	}
	if elts != nil {
		for i, elt := range elts {
			if n, ok := elt.(*ast.Name); ok && n.Value == name {
				index = i
				break
			}
		}
		if index < 0 {
			return values.NoValues
		}
	}

	comment := stmt.TrailingComment()
	if comment == "" {
		return values.NoValues
	}
	m := targetComment.FindStringSubmatch(comment)
	if m == nil {
		return values.NoValues
	}
	return s.ResolveAnnotationString(ctx, strings.TrimSpace(m[1]), index).ExecuteAnnotation()
}
