package jwt

import (
	"context"
	"errors"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrNoClaims = errors.New("no authenticated employee in context")

// ClaimsFromContext reads the identity that jwtauth.Verifier stored on the request context.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, err
	}

	employeeID, _ := claims["employee_id"].(string)
	if employeeID == "" {
		return Claims{}, ErrNoClaims
	}
	empID, _ := claims["emp_id"].(string)
	role, _ := claims["role"].(string)

	return Claims{EmployeeID: employeeID, EmpID: empID, Role: role}, nil
}

// ContextWithClaims returns ctx carrying an access token for claims, as the
// HTTP middleware would. Used by background callers and tests.
func ContextWithClaims(ctx context.Context, claims Claims) context.Context {
	token := jwt.New()
	_ = token.Set("employee_id", claims.EmployeeID)
	_ = token.Set("emp_id", claims.EmpID)
	_ = token.Set("role", claims.Role)
	_ = token.Set("type", TypeAccess)
	return jwtauth.NewContext(ctx, token, nil)
}
